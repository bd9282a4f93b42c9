package handlers

import (
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/models"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers public catalog routes and farmer listing routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)

	farmer := middleware.RequireRole(models.RoleFarmer)
	router.Get("/farmer/products", auth, farmer, h.HandleGetFarmerProducts)
	router.Post("/farmer/products", auth, farmer, h.HandleCreateProduct)
	router.Put("/farmer/products/:id", auth, farmer, h.HandleUpdateProduct)
	router.Delete("/farmer/products/:id", auth, farmer, h.HandleDeleteProduct)
}

// HandleGetProducts lists the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return serviceError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID returns one product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return serviceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetFarmerProducts lists the calling farmer's products.
func (h *ProductHandler) HandleGetFarmerProducts(c *fiber.Ctx) error {
	products, err := h.service.ProductsForFarmer(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not retrieve products")
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleCreateProduct lists a new product for the calling farmer.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if ok, err := validateBody(c, &product); !ok {
		return err
	}
	if err := h.service.CreateProduct(middleware.UserID(c), &product); err != nil {
		return serviceError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces one of the farmer's products.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if ok, err := validateBody(c, &product); !ok {
		return err
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(middleware.UserID(c), &product); err != nil {
		return serviceError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes one of the farmer's products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(middleware.UserID(c), c.Params("id")); err != nil {
		return serviceError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
