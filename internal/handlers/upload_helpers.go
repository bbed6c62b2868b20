package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Header aliases for count and order estimate uploads.
var (
	CountProductAliases  = []string{"Product Number", "Product #", "ProductNumber", "product_number", "SKU"}
	CountQuantityAliases = []string{"Quantity", "Qty", "Count", "quantity", "qty", "count"}

	OrderProductAliases  = append(append([]string{}, CountProductAliases...), "Item Number", "Item #")
	OrderQuantityAliases = append(append([]string{}, CountQuantityAliases...), "Amount", "Order Quantity", "Order Qty")
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	// multipartMemory matches gin's default; larger parts spill to temp files.
	multipartMemory = 32 << 20

	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// parseUploadForm parses the multipart body once. gin's PostForm hides parse failures,
// so both form helpers go through here first.
func parseUploadForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: upload is larger than the %s limit", services.ErrValidation, formatBytes(tooLarge.Limit))
	}
	if strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: upload is larger than the allowed size", services.ErrValidation)
	}
	return fmt.Errorf("%w: could not read upload form: %v", services.ErrValidation, err)
}

func formatBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

// readUpload reads the multipart "file" field as a table. Failures are input errors.
func readUpload(c *gin.Context) (*utils.Table, string, error) {
	if err := parseUploadForm(c); err != nil {
		return nil, "", err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: no file uploaded", services.ErrValidation)
	}
	if !utils.IsSupportedUpload(fileHeader.Filename) {
		return nil, fileHeader.Filename, fmt.Errorf("%w: %q", services.ErrUnsupportedFile, fileHeader.Filename)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fileHeader.Filename, fmt.Errorf("%w: could not open upload: %v", services.ErrValidation, err)
	}
	defer f.Close()

	table, err := utils.ReadTable(fileHeader.Filename, f)
	if err != nil {
		return nil, fileHeader.Filename, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	return table, fileHeader.Filename, nil
}

// requiredForm returns the trimmed form values for keys, the first key found wins.
func requiredForm(c *gin.Context, label string, keys ...string) (string, error) {
	if err := parseUploadForm(c); err != nil {
		return "", err
	}
	for _, k := range keys {
		if v := strings.TrimSpace(c.PostForm(k)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s is required", services.ErrValidation, label)
}

// ParseQuantityTable reads a count or order estimate sheet. Repeated product rows are
// summed; blank product cells and negative quantities are skipped.
func ParseQuantityTable(table *utils.Table, productAliases, quantityAliases []string) (models.Snapshot, error) {
	productIdx := utils.FindColumn(table.Headers, productAliases)
	qtyIdx := utils.FindColumn(table.Headers, quantityAliases)
	if productIdx < 0 || qtyIdx < 0 {
		return nil, fmt.Errorf("%w: expected a product column (%s) and a quantity column (%s)",
			services.ErrMissingColumn, strings.Join(productAliases, ", "), strings.Join(quantityAliases, ", "))
	}

	snap := models.Snapshot{}
	for _, row := range table.Rows {
		pn := utils.Cell(row, productIdx)
		if pn == "" || utils.IsBlankCell(pn) {
			continue
		}
		qty := utils.ParseQuantity(utils.Cell(row, qtyIdx))
		if qty < 0 {
			continue
		}
		snap[pn] += qty
	}
	return snap, nil
}

// writeDownload renders headers and rows as CSV or XLSX depending on ?format.
func writeDownload(c *gin.Context, baseName, sheet string, headers []string, rows [][]string) {
	format := strings.ToLower(c.DefaultQuery("format", formatCSV))

	var buf bytes.Buffer
	var contentType string
	switch format {
	case formatCSV:
		if err := utils.WriteCSV(&buf, headers, rows); err != nil {
			respondServiceError(c, err, "export "+baseName)
			return
		}
		contentType = "text/csv; charset=utf-8"
	case formatXLSX:
		if err := utils.WriteXLSX(&buf, sheet, headers, rows); err != nil {
			respondServiceError(c, err, "export "+baseName)
			return
		}
		contentType = mimeXLSX
	default:
		utils.RespondValidationFailed(c, "format must be csv or xlsx", format)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, baseName, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
