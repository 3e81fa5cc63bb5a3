package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"catalog/internal/apperror"
	"catalog/internal/dto"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	// Must precede /:id.
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a product with its translations.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProducts returns every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleSearchProducts searches translations by name with pagination.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	var q dto.SearchProductQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid search parameters",
			"error":   err.Error(),
		})
	}
	if err := dto.Validate(q); err != nil {
		return respondError(c, "Invalid search parameters", err)
	}

	result, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return respondError(c, "Could not search products", err)
	}
	return c.JSON(result)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := utils.CopyString(c.Params("id"))
	product, err := h.service.FindOne(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct replaces the translations of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := utils.CopyString(c.Params("id"))
	var req dto.CreateProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	product, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and its translations.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := utils.CopyString(c.Params("id"))
	if err := h.service.Remove(c.UserContext(), id); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %q deleted successfully", id),
	})
}

// parseBody decodes and validates a JSON request body. When it reports false the 400
// response has already been written and err is the result of writing it.
func parseBody(c *fiber.Ctx, req *dto.CreateProductRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		slog.Debug("invalid_request_body", "path", c.Path(), "error", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := dto.Validate(*req); err != nil {
		return false, respondError(c, "Invalid request body", err)
	}
	return true, nil
}

// respondError maps err to a status code and writes the JSON error body.
func respondError(c *fiber.Ctx, message string, err error) error {
	var verr *apperror.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case apperror.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		slog.Error("request_failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}
