package models

import "time"

// Product represents a farm product listed for sale.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	FarmerID    string    `json:"farmer_id" gorm:"type:varchar(36);index"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	Unit        string    `json:"unit" validate:"omitempty,max=20"`
	Category    string    `json:"category" validate:"omitempty,max=50"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
