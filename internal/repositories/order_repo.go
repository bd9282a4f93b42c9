package repositories

import (
	"sort"

	"farmtoclick/internal/models"
)

// OrderRepository defines the interface for order data access.
// List methods return orders newest first, with items and history loaded.
type OrderRepository interface {
	// Create stores the order and takes each item's quantity out of product
	// stock as one unit. When any product is short it fails with
	// ErrInsufficientStock and nothing is written.
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	ListByFarmer(farmerID string) ([]models.Order, error)
	ListByRider(riderID string) ([]models.Order, error)
	// Save persists the order's own columns and appends change to its history.
	Save(order *models.Order, change *models.StatusChange) error
}

type stockLine struct {
	productID string
	quantity  int
}

// stockLines sums item quantities per product, ordered by product ID so
// concurrent reservations lock rows in the same order.
func stockLines(items []models.OrderItem) []stockLine {
	totals := make(map[string]int)
	for _, it := range items {
		totals[it.ProductID] += it.Quantity
	}
	lines := make([]stockLine, 0, len(totals))
	for id, qty := range totals {
		lines = append(lines, stockLine{productID: id, quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].productID < lines[j].productID })
	return lines
}
