package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
	"farmtoclick/pkg/orderstatus"
)

var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInsufficientStock = repositories.ErrInsufficientStock
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("a reason is required to reject an order")
	ErrProofRequired     = errors.New("proof of delivery is required")
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderInput is a buyer's checkout request.
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingName    string           `json:"shipping_name" validate:"required"`
	ShippingPhone   string           `json:"shipping_phone" validate:"required"`
	ShippingAddress string           `json:"shipping_address" validate:"required"`
	DeliveryNotes   string           `json:"delivery_notes" validate:"omitempty,max=500"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	events      EventPublisher
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

// OrdersForBuyer lists the orders a buyer placed.
func (s *OrderService) OrdersForBuyer(userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID)
}

// OrdersForFarmer lists orders containing the farmer's products.
func (s *OrderService) OrdersForFarmer(farmerID string) ([]models.Order, error) {
	return s.orderRepo.ListByFarmer(farmerID)
}

// OrdersForRider lists orders assigned to the rider.
func (s *OrderService) OrdersForRider(riderID string) ([]models.Order, error) {
	return s.orderRepo.ListByRider(riderID)
}

// GetOrder returns an order the caller takes part in.
func (s *OrderService) GetOrder(userID, role, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	switch {
	case role == models.RoleAdmin,
		order.UserID == userID,
		order.AssignedRiderID == userID,
		role == models.RoleFarmer && order.HasFarmer(userID):
		return order, nil
	}
	return nil, ErrForbidden
}

// CreateOrder prices the items at current catalog prices and stores the order
// as pending. The repository reserves stock in the same write.
func (s *OrderService) CreateOrder(userID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}

	requested := make(map[string]int)
	products := make(map[string]*models.Product)
	var (
		items []models.OrderItem
		total float64
	)
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
		}
		product, ok := products[item.ProductID]
		if !ok {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("%w: product %s not found", ErrInvalidOrder, item.ProductID)
			}
			product = p
			products[item.ProductID] = p
		}
		requested[item.ProductID] += item.Quantity
		if product.Stock < requested[item.ProductID] {
			return nil, fmt.Errorf("%w for %s (requested: %d, available: %d)",
				ErrInsufficientStock, product.Name, requested[item.ProductID], product.Stock)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			FarmerID:  product.FarmerID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		total += product.Price * float64(item.Quantity)
	}

	now := time.Now().UTC()
	order := &models.Order{
		UserID:          userID,
		Status:          string(orderstatus.Pending),
		TotalAmount:     total,
		Items:           items,
		ShippingName:    strings.TrimSpace(in.ShippingName),
		ShippingPhone:   strings.TrimSpace(in.ShippingPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		DeliveryNotes:   strings.TrimSpace(in.DeliveryNotes),
		History:         []models.StatusChange{{Status: string(orderstatus.Pending), ChangedBy: userID, ChangedAt: now}},
	}
	if err := s.orderRepo.Create(order); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: another order took the remaining stock", ErrInsufficientStock)
		}
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	publishOrderEvent(s.events, EventOrderCreated, OrderEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Total:   order.TotalAmount,
	})
	return order, nil
}

// CancelOrder lets a buyer withdraw an order that has not been prepared yet.
func (s *OrderService) CancelOrder(userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	switch orderstatus.Normalize(order.Status) {
	case orderstatus.Pending, orderstatus.Confirmed:
	default:
		return nil, fmt.Errorf("%w: %s order cannot be cancelled", ErrInvalidTransition, order.Status)
	}
	if err := s.transition(order, orderstatus.Cancelled, "", userID); err != nil {
		return nil, err
	}
	s.restock(order)
	return order, nil
}

// UpdateBySeller applies a farmer's action. status may be an action name or
// its target status.
func (s *OrderService) UpdateBySeller(farmerID, orderID, status, reason string) (*models.Order, error) {
	action, ok := orderstatus.ParseAction(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasFarmer(farmerID) {
		return nil, ErrForbidden
	}
	target := action.Target()
	if !orderstatus.CanTransition(orderstatus.Seller, order.Status, string(target)) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, target)
	}
	reason = strings.TrimSpace(reason)
	if action.RequiresReason() && reason == "" {
		return nil, ErrReasonRequired
	}

	if target == orderstatus.Rejected {
		order.RejectionReason = reason
	}
	if err := s.transition(order, target, reason, farmerID); err != nil {
		return nil, err
	}
	if target == orderstatus.Rejected {
		s.restock(order)
	}
	return order, nil
}

// AssignRider hands a ready order to a rider.
func (s *OrderService) AssignRider(farmerID, orderID, riderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasFarmer(farmerID) {
		return nil, ErrForbidden
	}
	if orderstatus.Normalize(order.Status) != orderstatus.Ready {
		return nil, fmt.Errorf("%w: only ready orders can be assigned, order is %s", ErrInvalidTransition, order.Status)
	}
	rider, err := s.userRepo.GetByID(riderID)
	if err != nil {
		return nil, fmt.Errorf("%w: rider %s not found", ErrInvalidOrder, riderID)
	}
	if rider.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: user %s is not a rider", ErrInvalidOrder, riderID)
	}

	order.AssignedRiderID = rider.ID
	if err := s.transition(order, orderstatus.ReadyForShip, "", farmerID); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateByRider applies a rider's action. Delivery needs proofURL.
func (s *OrderService) UpdateByRider(riderID, orderID, status, proofURL string) (*models.Order, error) {
	action, ok := orderstatus.ParseAction(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedRiderID != riderID {
		return nil, ErrForbidden
	}
	target := action.Target()
	if !orderstatus.CanTransition(orderstatus.Rider, order.Status, string(target)) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, target)
	}
	if action.RequiresProof() {
		if proofURL == "" {
			return nil, ErrProofRequired
		}
		order.ProofOfDelivery = proofURL
	}
	if err := s.transition(order, target, "", riderID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) transition(order *models.Order, to orderstatus.Status, reason, by string) error {
	previous := order.Status
	order.Status = string(to)
	change := &models.StatusChange{
		Status:    string(to),
		Reason:    reason,
		ChangedBy: by,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.orderRepo.Save(order, change); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", order.ID, err)
	}
	log.Printf("Order %s: %s -> %s", order.ID, previous, to)

	publishOrderEvent(s.events, EventOrderStatusChanged, OrderEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Status:   order.Status,
		Previous: previous,
		Reason:   reason,
		Total:    order.TotalAmount,
	})
	return nil
}

// restock returns reserved quantities to the catalog. Failures are logged;
// the status change still goes through.
func (s *OrderService) restock(order *models.Order) {
	for _, item := range order.Items {
		if err := s.productRepo.AddStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("Restock failed for product %s: %v", item.ProductID, err)
		}
	}
}
