package handler

import (
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CompositionHandler manages the component lists behind composite "set"
// products and exposes the derived availability.
type CompositionHandler struct {
	stock service.StockService
}

func NewCompositionHandler(stock service.StockService) *CompositionHandler {
	return &CompositionHandler{stock: stock}
}

type addComponentRequest struct {
	ComponentID uint `json:"component_id"`
	Quantity    int  `json:"quantity"`
	Position    int  `json:"position"`
}

func (h *CompositionHandler) AddComponent(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req addComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	component, err := h.stock.AddComponent(c.Context(), setID, req.ComponentID, req.Quantity, req.Position)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Component added", "data": component})
}

func (h *CompositionHandler) RemoveComponent(c *fiber.Ctx) error {
	relationID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid component ID"})
	}

	if err := h.stock.RemoveComponent(c.Context(), relationID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"message": "Component removed"})
}

func (h *CompositionHandler) GetComponents(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	components, err := h.stock.ListComponents(c.Context(), setID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(components)
}

func (h *CompositionHandler) GetAvailability(c *fiber.Ctx) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	available, err := h.stock.ResolveAvailability(c.Context(), productID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"product_id": productID, "available": available})
}
