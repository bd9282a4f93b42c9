package models

import "time"

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	FarmerID  string  `json:"farmer_id" gorm:"type:varchar(36);index"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at the time of order
}

// StatusChange records one transition in an order's history.
type StatusChange struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	OrderID   string    `json:"-" gorm:"type:varchar(36);index"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Order represents a customer order.
type Order struct {
	ID              string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string         `json:"user_id" gorm:"type:varchar(36);index"`
	Status          string         `json:"status" gorm:"type:varchar(30);index"`
	TotalAmount     float64        `json:"total_amount"`
	Items           []OrderItem    `json:"items" gorm:"foreignKey:OrderID"`
	ShippingName    string         `json:"shipping_name"`
	ShippingPhone   string         `json:"shipping_phone"`
	ShippingAddress string         `json:"shipping_address"`
	DeliveryNotes   string         `json:"delivery_notes"`
	AssignedRiderID string         `json:"assigned_rider_id" gorm:"type:varchar(36);index"`
	RejectionReason string         `json:"rejection_reason"`
	ProofOfDelivery string         `json:"proof_of_delivery"`
	History         []StatusChange `json:"history" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HasFarmer reports whether any item in the order belongs to farmerID.
func (o *Order) HasFarmer(farmerID string) bool {
	for _, it := range o.Items {
		if it.FarmerID == farmerID {
			return true
		}
	}
	return false
}
