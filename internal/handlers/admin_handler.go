package handlers

import (
	"strings"

	"farmtoclick/internal/middleware"
	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves account verification for admins and the rider
// directory for farmers.
type AdminHandler struct {
	authService *services.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// RegisterRoutes registers the admin routes behind auth.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)
	router.Get("/admin/verifications", auth, admin, h.HandleListVerifications)
	router.Post("/admin/users/:id/verify", auth, admin, h.HandleVerifyUser)
	router.Get("/riders", auth, middleware.RequireRole(models.RoleFarmer, models.RoleAdmin), h.HandleListRiders)
}

type riderEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Active   bool   `json:"active"`
}

// HandleListRiders lists verified riders a farmer can assign orders to.
func (h *AdminHandler) HandleListRiders(c *fiber.Ctx) error {
	riders, err := h.authService.ActiveRiders()
	if err != nil {
		return serviceError(c, err, "Could not retrieve riders")
	}
	entries := make([]riderEntry, 0, len(riders))
	for _, r := range riders {
		entries = append(entries, riderEntry{
			ID:       r.ID,
			Name:     strings.TrimSpace(r.FirstName + " " + r.LastName),
			Phone:    r.Phone,
			Location: r.OverallLocation,
			Active:   r.IsVerified,
		})
	}
	return c.JSON(fiber.Map{"riders": entries})
}

// HandleListVerifications lists farmers and riders awaiting approval.
func (h *AdminHandler) HandleListVerifications(c *fiber.Ctx) error {
	users, err := h.authService.PendingVerifications()
	if err != nil {
		return serviceError(c, err, "Could not retrieve verifications")
	}
	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return c.JSON(fiber.Map{"users": profiles})
}

// HandleVerifyUser approves an account.
func (h *AdminHandler) HandleVerifyUser(c *fiber.Ctx) error {
	user, err := h.authService.VerifyUser(c.Params("id"))
	if err != nil {
		return serviceError(c, err, "Could not verify user")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User verified",
		"user":    user.Profile(),
	})
}
