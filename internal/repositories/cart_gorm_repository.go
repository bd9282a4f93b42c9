package repositories

import (
	"fmt"

	"farmtoclick/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// List returns the user's cart in the order items were first added.
func (r *GORMCartRepository) List(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart for %s: %w", userID, err)
	}
	return items, nil
}

// Add upserts on (user_id, product_id) so repeated adds never race into two
// rows.
func (r *GORMCartRepository) Add(userID, productID string, qty int) error {
	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("cart_items.quantity + excluded.quantity")}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to add %s to cart: %w", productID, err)
	}
	return nil
}

// SetQuantity replaces the quantity of an item already in the cart.
func (r *GORMCartRepository) SetQuantity(userID, productID string, qty int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Remove deletes one product from the cart. Removing an absent item is not
// an error.
func (r *GORMCartRepository) Remove(userID, productID string) error {
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", productID, err)
	}
	return nil
}

// Clear empties the user's cart.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for %s: %w", userID, err)
	}
	return nil
}
