package handler

import (
	"time"

	"go-jewelry-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) GetInventoryStats(c *fiber.Ctx) error {
	stats, err := h.service.GetInventoryStats(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(stats)
}

func (h *ReportHandler) GetDailyFlow(c *fiber.Ctx) error {
	rangeParam := c.Query("range", "7d") // Default 7 days
	now := time.Now()
	var startDate time.Time

	switch rangeParam {
	case "7d":
		startDate = now.AddDate(0, 0, -7)
	case "1m":
		startDate = now.AddDate(0, -1, 0)
	case "3m":
		startDate = now.AddDate(0, -3, 0)
	case "6m":
		startDate = now.AddDate(0, -6, 0)
	case "12m":
		startDate = now.AddDate(0, -12, 0)
	default:
		startDate = now.AddDate(0, 0, -7)
	}

	flow, err := h.service.GetDailyFlow(c.Context(), startDate, now)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(flow)
}
