package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"
	"farmtoclick/pkg/orderstatus"
)

// inboxLimit caps how many notifications one listing returns.
const inboxLimit = 50

// NotificationService turns order events into inbox entries and serves the
// inbox.
type NotificationService struct {
	repo repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ForUser lists the user's newest notifications.
func (s *NotificationService) ForUser(userID string) ([]models.Notification, error) {
	return s.repo.ListByUser(userID, inboxLimit)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, id string) error {
	return s.repo.MarkRead(userID, id)
}

// HandleOrderEvent processes one consumed event and stores a notification
// for the buyer. Unknown routing keys are ignored.
func (s *NotificationService) HandleOrderEvent(routingKey string, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", routingKey, err)
	}
	if ev.OrderID == "" || ev.UserID == "" {
		return fmt.Errorf("%s event without order or user id", routingKey)
	}

	n := &models.Notification{
		UserID:    ev.UserID,
		OrderID:   ev.OrderID,
		CreatedAt: ev.OccurredAt,
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	switch routingKey {
	case EventOrderCreated:
		n.Subject = "Order placed"
		n.Message = fmt.Sprintf("Your order %s was placed. Total: %.2f", ev.OrderID, ev.Total)
	case EventOrderStatusChanged:
		label := orderstatus.Classify(ev.Status).Label
		n.Subject = "Order update: " + label
		n.Message = fmt.Sprintf("Your order %s is now %s.", ev.OrderID, label)
		if ev.Reason != "" {
			n.Message += " Reason: " + ev.Reason
		}
	default:
		log.Printf("Ignoring event %s for order %s", routingKey, ev.OrderID)
		return nil
	}

	if err := s.repo.Create(n); err != nil {
		return fmt.Errorf("failed to store notification for order %s: %w", ev.OrderID, err)
	}
	log.Printf("Notified %s: %s", ev.UserID, n.Message)
	return nil
}
