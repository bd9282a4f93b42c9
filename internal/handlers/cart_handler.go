package handlers

import (
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the signed-in user's cart.
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/cart", auth, h.HandleGetCart)
	router.Post("/cart", auth, h.HandleAddToCart)
	router.Delete("/cart", auth, h.HandleClearCart)
	router.Put("/cart/:product_id", auth, h.HandleUpdateCartItem)
	router.Delete("/cart/:product_id", auth, h.HandleRemoveFromCart)
}

// HandleGetCart returns the cart priced at current catalog prices.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.Cart(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not load cart")
	}
	return c.JSON(cart)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// HandleAddToCart adds a product, one unit when no quantity is given.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req addToCartRequest
	if ok, err := validateBody(c, &req); !ok {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.cartService.AddItem(middleware.UserID(c), req.ProductID, req.Quantity); err != nil {
		return serviceError(c, err, "Could not add to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product added to cart",
	})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateCartItem sets an item's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	var req updateCartRequest
	if ok, err := validateBody(c, &req); !ok {
		return err
	}
	removed, err := h.cartService.UpdateItem(middleware.UserID(c), c.Params("product_id"), req.Quantity)
	if err != nil {
		return serviceError(c, err, "Could not update cart")
	}
	message := "Cart updated"
	if removed {
		message = "Item removed from cart"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// HandleRemoveFromCart drops one product from the cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	if err := h.cartService.RemoveItem(middleware.UserID(c), c.Params("product_id")); err != nil {
		return serviceError(c, err, "Could not update cart")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item removed from cart"})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.cartService.Clear(middleware.UserID(c)); err != nil {
		return serviceError(c, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart cleared"})
}
