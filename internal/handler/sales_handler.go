package handler

import (
	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

type saleLineRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (h *SalesHandler) ApplySale(c *fiber.Ctx) error {
	var req saleLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reason == "" {
		req.Reason = "sale"
	}

	if err := h.service.ApplySaleLine(c.Context(), req.ProductID, req.Quantity, req.Reason, getOperator(c)); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded"})
}

func (h *SalesHandler) ApplyReturn(c *fiber.Ctx) error {
	var req saleLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reason == "" {
		req.Reason = "return"
	}

	if err := h.service.ApplyReturnLine(c.Context(), req.ProductID, req.Quantity, req.Reason, getOperator(c)); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Return recorded"})
}

type adjustStockRequest struct {
	NewStock int    `json:"new_stock"`
	Reason   string `json:"reason"`
}

func (h *SalesHandler) AdjustStock(c *fiber.Ctx) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reason == "" {
		req.Reason = "manual adjustment"
	}

	if err := h.service.RecordManualAdjustment(c.Context(), productID, req.NewStock, req.Reason, getOperator(c)); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock adjusted"})
}

func (h *SalesHandler) GetMovements(c *fiber.Ctx) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	limit := c.QueryInt("limit", 50)

	movements, err := h.service.ListMovements(c.Context(), productID, limit)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(movements)
}
