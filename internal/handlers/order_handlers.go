package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes order estimates, invoice ingestion, deliveries and the official order.
type OrderHandler struct {
	ledger   services.LedgerService
	invoices services.InvoiceImportService
	official services.OfficialOrderService
}

func NewOrderHandler(ls services.LedgerService, is services.InvoiceImportService, ofs services.OfficialOrderService) *OrderHandler {
	return &OrderHandler{ledger: ls, invoices: is, official: ofs}
}

// UploadOrders replaces the order estimate for (location, date) from a sheet.
func (h *OrderHandler) UploadOrders(c *gin.Context) {
	location, err := requiredForm(c, "location", "location")
	if err != nil {
		respondServiceError(c, err, "upload order estimate")
		return
	}
	date, err := requiredForm(c, "date", "date", "order_date")
	if err != nil {
		respondServiceError(c, err, "upload order estimate")
		return
	}
	table, filename, err := readUpload(c)
	if err != nil {
		respondServiceError(c, err, "upload order estimate")
		return
	}
	snap, err := ParseQuantityTable(table, OrderProductAliases, OrderQuantityAliases)
	if err != nil {
		respondServiceError(c, err, "upload order estimate")
		return
	}
	if err := h.ledger.SaveOrderSnapshot(location, date, snap); err != nil {
		respondServiceError(c, err, "upload order estimate")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Order estimate for %s on %s loaded from %s.", location, date, filename),
		gin.H{"products": len(snap), "orders": snap})
}

// UploadInvoice adds an invoice to the deliveries of (location, date).
func (h *OrderHandler) UploadInvoice(c *gin.Context) {
	location, err := requiredForm(c, "location", "location")
	if err != nil {
		respondServiceError(c, err, "import invoice")
		return
	}
	date, err := requiredForm(c, "delivery date", "date", "delivery_date")
	if err != nil {
		respondServiceError(c, err, "import invoice")
		return
	}
	table, filename, err := readUpload(c)
	if err != nil {
		respondServiceError(c, err, "import invoice")
		return
	}

	res, err := h.invoices.Import(location, date, filename, table)
	if res != nil && errors.Is(err, services.ErrUnsavedChange) {
		// The deliveries are already in the ledger: resubmitting would add them twice.
		utils.LogError(err, "import invoice: applied but not saved", map[string]interface{}{"import_id": res.Entry.ImportID})
		utils.RespondWithErrorFields(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailed,
			fmt.Sprintf("Invoice %s was applied as import %s but could not be saved to storage. "+
				"Do not upload it again; reverse import %s if it should not stand.", filename, res.Entry.ImportID, res.Entry.ImportID),
			err.Error()), importFields(res))
		return
	}
	if err != nil {
		respondServiceError(c, err, "import invoice")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Invoice %s imported for %s on %s.", filename, location, date), importFields(res))
}

func importFields(res *services.InvoiceImportResult) gin.H {
	return gin.H{
		"import_id":            res.Entry.ImportID,
		"matched_count":        res.Entry.MatchedCount,
		"new_products_created": res.Entry.NewProducts,
		"lines_added":          res.LinesAdded,
		"skipped_rows":         res.SkippedRows,
		"products_added":       res.Entry.ProductsAdded,
	}
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	location, date := c.Param("location"), c.Param("date")
	snap, ok := h.ledger.GetOrderSnapshot(location, date)
	if !ok {
		respondServiceError(c, fmt.Errorf("%w: %s on %s", services.ErrOrderSnapshotNotFound, location, date), "get order estimate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location, "date": date, "orders": snap})
}

func (h *OrderHandler) GetDeliveries(c *gin.Context) {
	location, date := c.Param("location"), c.Param("date")
	c.JSON(http.StatusOK, gin.H{"location": location, "date": date, "deliveries": h.ledger.GetDeliveries(location, date)})
}

func (h *OrderHandler) CalculateOfficialOrder(c *gin.Context) {
	var req models.OfficialOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.official.Calculate(req)
	if err != nil {
		respondServiceError(c, err, "calculate official order")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("%d products to order.", len(order.Items)), gin.H{"order": order})
}
