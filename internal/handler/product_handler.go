package handler

import (
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
	stock   service.StockService
}

func NewProductHandler(s service.ProductService, stock service.StockService) *ProductHandler {
	return &ProductHandler{service: s, stock: stock}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateProduct(c.Context(), &product, getOperator(c)); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(c.Context(), id, &product, getOperator(c))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(products)
}

// GetProduct returns the back-office view: the row plus its derived
// availability.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(c.Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	available, err := h.stock.ResolveAvailability(c.Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"data": product, "available": available})
}

func (h *ProductHandler) GetLowStockProducts(c *fiber.Ctx) error {
	products, err := h.service.GetLowStockProducts(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(products)
}
