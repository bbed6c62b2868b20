package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryExportHeaders are the columns of a count download.
var InventoryExportHeaders = []string{
	"Product Number", "Product Description", "Product Brand", "Product Package Size", "Group Name", "Quantity",
}

// InventoryHandler exposes physical counts and the location index.
type InventoryHandler struct {
	ledger  services.LedgerService
	catalog services.CatalogService
}

func NewInventoryHandler(ls services.LedgerService, cs services.CatalogService) *InventoryHandler {
	return &InventoryHandler{ledger: ls, catalog: cs}
}

type saveCountRequest struct {
	Location  string             `json:"location" binding:"required"`
	Date      string             `json:"date" binding:"required"`
	Inventory map[string]float64 `json:"inventory"`
}

func (h *InventoryHandler) GetCount(c *gin.Context) {
	location, date := c.Param("location"), c.Param("date")
	c.JSON(http.StatusOK, gin.H{
		"location":  location,
		"date":      date,
		"inventory": h.ledger.GetCount(location, date),
	})
}

// SaveCount replaces the count for (location, date) with the posted map.
func (h *InventoryHandler) SaveCount(c *gin.Context) {
	var req saveCountRequest
	if !bindJSON(c, &req) {
		return
	}
	snap := models.Snapshot{}
	for pn, qty := range req.Inventory {
		pn = strings.TrimSpace(pn)
		if pn == "" {
			continue
		}
		if qty < 0 {
			respondServiceError(c, fmt.Errorf("%w: quantity for %s cannot be negative", services.ErrValidation, pn), "save count")
			return
		}
		snap[pn] = qty
	}

	location, date := strings.TrimSpace(req.Location), strings.TrimSpace(req.Date)
	if err := h.ledger.SaveCount(location, date, snap); err != nil {
		respondServiceError(c, err, "save count")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Inventory saved for %s on %s.", location, date), gin.H{"products": len(snap)})
}

func (h *InventoryHandler) UploadCount(c *gin.Context) {
	location, err := requiredForm(c, "location", "location")
	if err != nil {
		respondServiceError(c, err, "upload count")
		return
	}
	date, err := requiredForm(c, "date", "date")
	if err != nil {
		respondServiceError(c, err, "upload count")
		return
	}
	table, filename, err := readUpload(c)
	if err != nil {
		respondServiceError(c, err, "upload count")
		return
	}
	snap, err := ParseQuantityTable(table, CountProductAliases, CountQuantityAliases)
	if err != nil {
		respondServiceError(c, err, "upload count")
		return
	}
	if err := h.ledger.SaveCount(location, date, snap); err != nil {
		respondServiceError(c, err, "upload count")
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Inventory for %s on %s loaded from %s.", location, date, filename),
		gin.H{"products": len(snap), "inventory": snap})
}

func (h *InventoryHandler) DeleteCount(c *gin.Context) {
	location, date := c.Param("location"), c.Param("date")
	existed, err := h.ledger.DeleteCount(location, date)
	if err != nil {
		respondServiceError(c, err, "delete count")
		return
	}
	if !existed {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound,
			fmt.Sprintf("No inventory recorded for %s on %s.", location, date), "delete count"))
		return
	}
	utils.RespondSuccess(c, fmt.Sprintf("Inventory for %s on %s deleted.", location, date), nil)
}

// ExportCount downloads a count in catalog order; products missing from the catalog follow, sorted.
func (h *InventoryHandler) ExportCount(c *gin.Context) {
	location, date := c.Param("location"), c.Param("date")
	snap := h.ledger.GetCount(location, date)
	rows := snapshotRows(h.catalog.List(), snap)
	writeDownload(c, fmt.Sprintf("inventory_%s_%s", sanitizeFilename(location), date), "Inventory", InventoryExportHeaders, rows)
}

func (h *InventoryHandler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Locations())
}

func snapshotRows(catalog []models.Product, snap models.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap))
	seen := make(map[string]bool, len(snap))
	for _, p := range catalog {
		qty, ok := snap[p.ProductNumber]
		if !ok {
			continue
		}
		seen[p.ProductNumber] = true
		rows = append(rows, []string{p.ProductNumber, p.Description, p.Brand, p.PackageSize, p.Group, utils.FormatQuantity(qty)})
	}
	var rest []string
	for pn := range snap {
		if !seen[pn] {
			rest = append(rest, pn)
		}
	}
	sort.Strings(rest)
	for _, pn := range rest {
		rows = append(rows, []string{pn, "", "", "", "", utils.FormatQuantity(snap[pn])})
	}
	return rows
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
