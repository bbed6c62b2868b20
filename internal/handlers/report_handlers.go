package handlers

import (
	"net/http"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the product activity report.
type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reports: rs}
}

func parseReportRequestParams(c *gin.Context) models.ReportRequestParams {
	return models.ReportRequestParams{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Location:  c.Query("location"),
		Inflow:    c.Query("inflow"),
	}
}

func (h *ReportHandler) GetProductActivity(c *gin.Context) {
	report, err := h.reports.ProductActivity(c.Request.Context(), parseReportRequestParams(c))
	if err != nil {
		respondServiceError(c, err, "build product activity report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) ExportProductActivity(c *gin.Context) {
	report, err := h.reports.ProductActivity(c.Request.Context(), parseReportRequestParams(c))
	if err != nil {
		respondServiceError(c, err, "export product activity report")
		return
	}
	name := "product_activity_" + report.Params.StartDate + "_" + report.Params.EndDate
	writeDownload(c, name, "Product Activity", services.ActivityExportHeaders, services.ActivityExportRows(report))
}
