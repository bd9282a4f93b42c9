package repositories

import (
	"farmtoclick/internal/models"
)

// NotificationRepository defines the interface for inbox data access.
type NotificationRepository interface {
	Create(n *models.Notification) error
	// ListByUser returns up to limit notifications, newest first.
	ListByUser(userID string, limit int) ([]models.Notification, error)
	// MarkRead flags a notification owned by userID as read.
	MarkRead(userID, id string) error
}
