package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"farmtoclick/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products ordered by name.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].Name < productList[j].Name })
	return productList, nil
}

// ListByFarmer returns the farmer's listings ordered by name.
func (r *MockProductRepository) ListByFarmer(farmerID string) ([]models.Product, error) {
	all, _ := r.GetAll()
	mine := make([]models.Product, 0)
	for _, p := range all {
		if p.FarmerID == farmerID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// AddStock increments a product's stock.
func (r *MockProductRepository) AddStock(id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	p.Stock += qty
	r.products[id] = p
	return nil
}

// take removes every line from stock, or nothing when any product is short.
func (r *MockProductRepository) take(lines []stockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		if p, ok := r.products[line.productID]; !ok || p.Stock < line.quantity {
			return fmt.Errorf("product %s: %w", line.productID, ErrInsufficientStock)
		}
	}
	for _, line := range lines {
		p := r.products[line.productID]
		p.Stock -= line.quantity
		r.products[line.productID] = p
	}
	return nil
}
