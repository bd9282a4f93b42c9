package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"farmtoclick/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository that
// reserves stock in products. products may be nil to skip stock keeping.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// Create reserves stock and adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.products != nil {
		if err := r.products.take(stockLines(order.Items)); err != nil {
			return err
		}
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// ListByUser returns the orders a buyer placed.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// ListByFarmer returns orders containing one of the farmer's products.
func (r *MockOrderRepository) ListByFarmer(farmerID string) ([]models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.HasFarmer(farmerID) }), nil
}

// ListByRider returns orders assigned to the rider.
func (r *MockOrderRepository) ListByRider(riderID string) ([]models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.AssignedRiderID == riderID }), nil
}

// Save replaces the stored order and appends change to its history.
func (r *MockOrderRepository) Save(order *models.Order, change *models.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrNotFound)
	}
	order.History = stored.History
	if change != nil {
		change.OrderID = order.ID
		order.History = append(order.History, *change)
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *MockOrderRepository) filter(keep func(*models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, o := range r.orders {
		if keep(&o) {
			orderList = append(orderList, cloneOrder(o))
		}
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].CreatedAt.After(orderList[j].CreatedAt) })
	return orderList
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	o.History = append([]models.StatusChange(nil), o.History...)
	return o
}
