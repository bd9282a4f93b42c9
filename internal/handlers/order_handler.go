package handlers

import (
	"fmt"

	"farmtoclick/internal/middleware"
	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for buyer and farmer order flows.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/orders", auth, h.HandleGetOrders)
	router.Post("/orders", auth, h.HandleCreateOrder)
	router.Get("/orders/:id", auth, h.HandleGetOrderByID)
	router.Post("/orders/:id/cancel", auth, h.HandleCancelOrder)

	farmer := middleware.RequireRole(models.RoleFarmer)
	router.Get("/farmer/orders", auth, farmer, h.HandleGetFarmerOrders)
	router.Post("/order/:id/status", auth, farmer, h.HandleUpdateOrderStatus)
	router.Post("/orders/:id/assign-rider", auth, farmer, h.HandleAssignRider)
}

// HandleGetOrders lists the caller's own orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.OrdersForBuyer(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns an order the caller takes part in.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(middleware.UserID(c), middleware.Role(c), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleCreateOrder places an order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderInput
	if ok, err := validateBody(c, &req); !ok {
		return err
	}

	order, err := h.service.CreateOrder(middleware.UserID(c), req)
	if err != nil {
		return serviceError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// HandleCancelOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "Could not cancel order")
	}
	return statusChanged(c, order)
}

// HandleGetFarmerOrders lists orders containing the farmer's products.
func (h *OrderHandler) HandleGetFarmerOrders(c *fiber.Ctx) error {
	orders, err := h.service.OrdersForFarmer(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// HandleUpdateOrderStatus applies a farmer's status action.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if ok, err := validateBody(c, &req); !ok {
		return err
	}

	order, err := h.service.UpdateBySeller(middleware.UserID(c), c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return serviceError(c, err, "Could not update order status")
	}
	return statusChanged(c, order)
}

type assignRiderRequest struct {
	RiderID string `json:"rider_id" validate:"required"`
}

// HandleAssignRider hands a ready order to a rider.
func (h *OrderHandler) HandleAssignRider(c *fiber.Ctx) error {
	var req assignRiderRequest
	if ok, err := validateBody(c, &req); !ok {
		return err
	}

	order, err := h.service.AssignRider(middleware.UserID(c), c.Params("id"), req.RiderID)
	if err != nil {
		return serviceError(c, err, "Could not assign rider")
	}
	return statusChanged(c, order)
}

func statusChanged(c *fiber.Ctx, order *models.Order) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  order.Status,
		"message": fmt.Sprintf("Order %s status updated to %s", order.ID, order.Status),
		"order":   order,
	})
}
