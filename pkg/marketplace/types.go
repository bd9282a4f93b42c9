package marketplace

import (
	"time"

	"farmtoclick/pkg/orderstatus"
)

// Product is a catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
	FarmerID    string  `json:"farmer_id"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Order is an order as the backend returns it.
type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Status          string         `json:"status"`
	TotalAmount     float64        `json:"total_amount"`
	Items           []OrderItem    `json:"items"`
	ShippingName    string         `json:"shipping_name"`
	ShippingPhone   string         `json:"shipping_phone"`
	ShippingAddress string         `json:"shipping_address"`
	DeliveryNotes   string         `json:"delivery_notes"`
	AssignedRiderID string         `json:"assigned_rider_id"`
	RejectionReason string         `json:"rejection_reason"`
	ProofOfDelivery string         `json:"proof_of_delivery"`
	History         []StatusChange `json:"history"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (o Order) OrderStatus() string  { return o.Status }
func (o Order) OrderTotal() float64 { return o.TotalAmount }

// Classification is the display treatment of the order's status.
func (o Order) Classification() orderstatus.Classification {
	return orderstatus.Classify(o.Status)
}

// Actions lists what role may do next with this order.
func (o Order) Actions(role orderstatus.Role) []orderstatus.Action {
	return orderstatus.PermittedActions(role, o.Status)
}

// CreateOrderRequest places an order for the signed-in buyer.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingName    string      `json:"shipping_name"`
	ShippingPhone   string      `json:"shipping_phone"`
	ShippingAddress string      `json:"shipping_address"`
	DeliveryNotes   string      `json:"delivery_notes,omitempty"`
}

// Account is a user awaiting admin verification.
type Account struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	FarmName   string `json:"farm_name"`
	IsVerified bool   `json:"is_verified"`
}

// Proof is a proof-of-delivery image.
type Proof struct {
	Filename string
	Data     []byte
}

// CartLine is a cart entry priced at the current catalog price.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// Cart is the signed-in user's cart.
type Cart struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// Rider is a verified rider a farmer can assign orders to.
type Rider struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Active   bool   `json:"active"`
}

// Notification is an inbox entry about one of the user's orders.
type Notification struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
