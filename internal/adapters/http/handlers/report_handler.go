package handlers

import (
	"stockwise-decd/internal/core/services"
	"stockwise-decd/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles inventory report endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GenerateInventoryReport handles report generation
// @Summary Generate inventory report
// @Description Build a narrative report over the current inventory and active loans
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by stock status (critical|low|in_stock)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reports/inventory [get]
func (h *ReportHandler) GenerateInventoryReport(c *fiber.Ctx) error {
	filters := services.ReportFilters{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}

	report, err := h.reportService.GenerateInventoryReport(c.Context(), filters)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate report")
	}

	return response.Success(c, "Report generated successfully", fiber.Map{
		"report": report,
	})
}
