package handler

import (
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type VariantHandler struct {
	service service.VariantService
}

func NewVariantHandler(s service.VariantService) *VariantHandler {
	return &VariantHandler{service: s}
}

func (h *VariantHandler) CreateVariant(c *fiber.Ctx) error {
	parentID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var variant model.Variant
	if err := c.BodyParser(&variant); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	variant.ProductID = parentID

	if err := h.service.CreateVariant(c.Context(), &variant); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Variant created", "data": variant})
}

func (h *VariantHandler) UpdateVariant(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid variant ID"})
	}

	var variant model.Variant
	if err := c.BodyParser(&variant); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateVariant(c.Context(), id, &variant)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"message": "Variant updated", "data": updated})
}

func (h *VariantHandler) RemoveVariant(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid variant ID"})
	}

	if err := h.service.RemoveVariant(c.Context(), id); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"message": "Variant removed"})
}

func (h *VariantHandler) GetVariants(c *fiber.Ctx) error {
	parentID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	onlyActive := c.QueryBool("only_active", false)

	variants, err := h.service.ListVariants(c.Context(), parentID, onlyActive)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(variants)
}
