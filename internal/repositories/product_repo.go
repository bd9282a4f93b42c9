package repositories

import (
	"errors"

	"farmtoclick/internal/models"
)

// ErrInsufficientStock is returned when a reservation would take a product's
// stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	ListByFarmer(farmerID string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// AddStock increments stock in place, without reading the row first.
	AddStock(id string, qty int) error
}
