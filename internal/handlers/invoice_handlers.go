package handlers

import (
	"net/http"

	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes the import log.
type InvoiceHandler struct {
	invoices services.InvoiceImportService
}

func NewInvoiceHandler(is services.InvoiceImportService) *InvoiceHandler {
	return &InvoiceHandler{invoices: is}
}

// GetImportLog lists imports, newest first.
func (h *InvoiceHandler) GetImportLog(c *gin.Context) {
	c.JSON(http.StatusOK, h.invoices.List())
}

// ReverseImport subtracts an import from the deliveries and drops it from the log.
// Products the import created stay in the catalog.
func (h *InvoiceHandler) ReverseImport(c *gin.Context) {
	entry, err := h.invoices.Reverse(c.Param("import_id"))
	if err != nil {
		respondServiceError(c, err, "reverse import")
		return
	}
	utils.RespondSuccess(c, "Import "+entry.ImportID+" reversed.", gin.H{"import": entry})
}
