package handlers

import (
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RiderHandler handles the delivery flow for riders.
type RiderHandler struct {
	service *services.OrderService
	uploads *Uploader
}

// NewRiderHandler creates a new RiderHandler.
func NewRiderHandler(service *services.OrderService, uploads *Uploader) *RiderHandler {
	return &RiderHandler{service: service, uploads: uploads}
}

// RegisterRoutes registers the rider routes behind auth.
func (h *RiderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	rider := middleware.RequireRole(models.RoleRider)
	router.Get("/rider/orders", auth, rider, h.HandleGetRiderOrders)
	router.Post("/rider/orders/:id/status", auth, rider, h.HandleUpdateRiderStatus)
}

// HandleGetRiderOrders lists orders assigned to the rider.
func (h *RiderHandler) HandleGetRiderOrders(c *fiber.Ctx) error {
	orders, err := h.service.OrdersForRider(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleUpdateRiderStatus applies a rider action. Delivery is sent as
// multipart form data carrying the proof image.
func (h *RiderHandler) HandleUpdateRiderStatus(c *fiber.Ctx) error {
	var req statusRequest
	var proof string

	if isMultipart(c) {
		req.Status = c.FormValue("status")
		if err := validate.Struct(req); err != nil {
			return validationFailed(c, err)
		}
		var err error
		proof, err = h.uploads.SaveImage(c, "proof", "delivery")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	} else if ok, err := validateBody(c, &req); !ok {
		return err
	}

	order, err := h.service.UpdateByRider(middleware.UserID(c), c.Params("id"), req.Status, proof)
	if err != nil {
		h.uploads.Discard(proof)
		return serviceError(c, err, "Could not update order status")
	}
	return statusChanged(c, order)
}
