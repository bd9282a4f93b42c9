package repositories

import (
	"farmtoclick/internal/models"
)

// CartRepository defines the interface for cart data access. Carts are
// keyed by user; each product appears at most once.
type CartRepository interface {
	List(userID string) ([]models.CartItem, error)
	// Add inserts the product or raises its quantity by qty.
	Add(userID, productID string, qty int) error
	SetQuantity(userID, productID string, qty int) error
	Remove(userID, productID string) error
	Clear(userID string) error
}
