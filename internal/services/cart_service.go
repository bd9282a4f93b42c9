package services

import (
	"errors"
	"fmt"
	"strings"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
)

// ErrInvalidCartItem is returned for a missing product ID or a quantity
// below one.
var ErrInvalidCartItem = errors.New("invalid product or quantity")

// CartLine is a cart entry priced at the current catalog price.
type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Subtotal float64        `json:"subtotal"`
}

// Cart is a user's cart with its total.
type Cart struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// CartService handles business logic related to carts.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Cart loads the user's cart. Products that left the catalog are skipped.
func (s *CartService) Cart(userID string) (*Cart, error) {
	items, err := s.cartRepo.List(userID)
	if err != nil {
		return nil, err
	}
	cart := &Cart{Items: make([]CartLine, 0, len(items))}
	for _, item := range items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to price cart item %s: %w", item.ProductID, err)
		}
		line := CartLine{
			Product:  *product,
			Quantity: item.Quantity,
			Subtotal: product.Price * float64(item.Quantity),
		}
		cart.Items = append(cart.Items, line)
		cart.Total += line.Subtotal
	}
	return cart, nil
}

// AddItem puts qty of a product in the cart, on top of what is already there.
func (s *CartService) AddItem(userID, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" || qty < 1 {
		return ErrInvalidCartItem
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return err
	}
	return s.cartRepo.Add(userID, productID, qty)
}

// UpdateItem sets an item's quantity. A quantity below one removes the item
// and reports removed.
func (s *CartService) UpdateItem(userID, productID string, qty int) (removed bool, err error) {
	if qty < 1 {
		return true, s.cartRepo.Remove(userID, productID)
	}
	return false, s.cartRepo.SetQuantity(userID, productID, qty)
}

// RemoveItem takes a product out of the cart.
func (s *CartService) RemoveItem(userID, productID string) error {
	return s.cartRepo.Remove(userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}
