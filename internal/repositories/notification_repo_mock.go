package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"farmtoclick/internal/models"

	"github.com/google/uuid"
)

// MockNotificationRepository is an in-memory implementation of NotificationRepository.
type MockNotificationRepository struct {
	items map[string]models.Notification
	mu    sync.RWMutex
}

// NewMockNotificationRepository creates a new instance of MockNotificationRepository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		items: make(map[string]models.Notification),
	}
}

// Create stores a new notification.
func (r *MockNotificationRepository) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items[n.ID] = *n
	return nil
}

// ListByUser returns the user's newest notifications.
func (r *MockNotificationRepository) ListByUser(userID string, limit int) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Notification, 0)
	for _, n := range r.items {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// MarkRead flags a notification owned by userID as read.
func (r *MockNotificationRepository) MarkRead(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	n.Read = true
	r.items[id] = n
	return nil
}
