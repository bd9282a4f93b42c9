package repositories

import (
	"errors"
	"fmt"

	"farmtoclick/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) withDetails() *gorm.DB {
	return r.db.Preload("Items").Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

// Create reserves stock and stores the order together with its items and
// history in one transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range stockLines(order.Items) {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.productID, line.quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", line.productID, ErrInsufficientStock)
			}
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves one order with items and history.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails().First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns the orders a buyer placed.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	return r.list("user_id = ?", userID)
}

// ListByFarmer returns orders containing at least one of the farmer's products.
func (r *GORMOrderRepository) ListByFarmer(farmerID string) ([]models.Order, error) {
	sub := r.db.Model(&models.OrderItem{}).Select("order_id").Where("farmer_id = ?", farmerID)
	return r.list("id IN (?)", sub)
}

// ListByRider returns orders assigned to the rider.
func (r *GORMOrderRepository) ListByRider(riderID string) ([]models.Order, error) {
	return r.list("assigned_rider_id = ?", riderID)
}

func (r *GORMOrderRepository) list(query string, args ...any) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withDetails().Where(query, args...).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Save updates the order row and appends change in one transaction.
func (r *GORMOrderRepository) Save(order *models.Order, change *models.StatusChange) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Omit(clause.Associations).Save(order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s: %w", order.ID, ErrNotFound)
		}
		if change == nil {
			return nil
		}
		change.OrderID = order.ID
		return tx.Create(change).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	if change != nil {
		order.History = append(order.History, *change)
	}
	return nil
}
