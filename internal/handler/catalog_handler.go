package handler

import (
	"strconv"

	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CatalogHandler is the public storefront surface: no auth, booleans instead
// of counters on the list form.
type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filters := service.CatalogFilters{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 0),
		Shuffle:  c.QueryBool("shuffle", false),
	}

	if raw := c.Query("price_min"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid price_min"})
		}
		filters.PriceMin = &min
	}
	if raw := c.Query("price_max"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid price_max"})
		}
		filters.PriceMax = &max
	}
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid seed"})
		}
		filters.Seed = &seed
	}

	page, err := h.service.Assemble(c.Context(), filters)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(page)
}

func (h *CatalogHandler) GetProductDetail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var variantID *uint
	if raw := c.Query("variant_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid variant_id"})
		}
		v := uint(parsed)
		variantID = &v
	}

	detail, err := h.service.GetProductDetail(c.Context(), id, variantID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(detail)
}
