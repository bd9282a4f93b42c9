package repositories

import (
	"fmt"
	"sync"

	"farmtoclick/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string][]models.CartItem
	mu    sync.Mutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string][]models.CartItem),
	}
}

// List returns a copy of the user's cart.
func (r *MockCartRepository) List(userID string) ([]models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]models.CartItem{}, r.carts[userID]...), nil
}

// Add inserts the product or raises its quantity.
func (r *MockCartRepository) Add(userID, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += qty
			return nil
		}
	}
	r.carts[userID] = append(items, models.CartItem{UserID: userID, ProductID: productID, Quantity: qty})
	return nil
}

// SetQuantity replaces an item's quantity.
func (r *MockCartRepository) SetQuantity(userID, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.carts[userID] {
		if it.ProductID == productID {
			r.carts[userID][i].Quantity = qty
			return nil
		}
	}
	return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
}

// Remove deletes one product from the cart.
func (r *MockCartRepository) Remove(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[userID]
	for i, it := range items {
		if it.ProductID == productID {
			r.carts[userID] = append(items[:i:i], items[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the user's cart.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
