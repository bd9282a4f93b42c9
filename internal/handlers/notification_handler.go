package handlers

import (
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler serves the signed-in user's inbox.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes registers the inbox routes behind auth.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/user/notifications", auth, h.HandleListNotifications)
	router.Post("/user/notifications/:id/read", auth, h.HandleMarkRead)
}

// HandleListNotifications returns the newest notifications first.
func (h *NotificationHandler) HandleListNotifications(c *fiber.Ctx) error {
	list, err := h.notificationService.ForUser(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not load notifications")
	}
	return c.JSON(fiber.Map{"notifications": list})
}

// HandleMarkRead flags one notification as read.
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.notificationService.MarkRead(middleware.UserID(c), c.Params("id")); err != nil {
		return serviceError(c, err, "Could not update notification")
	}
	return c.JSON(fiber.Map{"success": true})
}
