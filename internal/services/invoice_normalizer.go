package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

// Vendor invoice header aliases. Matching is trim-equal and case-sensitive.
var (
	InvoiceProductNumberAliases = []string{"ProductNumber", "Product Number", "Product#", "SKU"}
	InvoiceQtyShipAliases       = []string{"QtyShip", "Qty Ship", "Quantity Shipped", "Shipped", "Qty"}
	InvoicePricingUnitAliases   = []string{"PricingUnit", "Pricing Unit", "Unit", "UOM"}
	InvoicePackingSizeAliases   = []string{"PackingSize", "Packing Size", "Pack Size", "Package Size"}
	InvoiceDescriptionAliases   = []string{"ProductDescription", "Product Description", "Description", "Item Description"}
	InvoiceLabelAliases         = []string{"ProductLabel", "Product Label", "Label", "Brand"}
)

// CasePricingUnit marks an invoice line priced per vendor case.
const CasePricingUnit = "CS"

// ProductLookup resolves a product number against the catalog.
type ProductLookup func(productNumber string) (models.Product, bool)

// NormalizedInvoice is the normalizer output for one invoice file.
type NormalizedInvoice struct {
	Lines        []models.DeliveryLine
	NewProducts  []models.Product
	MatchedCount int
	SkippedRows  int
}

// NewProductNumbers lists the product numbers the invoice will create, in first-seen order.
func (n *NormalizedInvoice) NewProductNumbers() []string {
	out := make([]string, 0, len(n.NewProducts))
	for _, p := range n.NewProducts {
		out = append(out, p.ProductNumber)
	}
	return out
}

type invoiceColumns struct {
	productNumber, qtyShip, pricingUnit, packingSize, description, label int
}

// InvoiceNormalizer turns vendor invoice rows into delivered-unit quantities.
type InvoiceNormalizer struct{}

func NewInvoiceNormalizer() *InvoiceNormalizer {
	return &InvoiceNormalizer{}
}

func (n *InvoiceNormalizer) discover(headers []string) (invoiceColumns, error) {
	cols := invoiceColumns{
		productNumber: utils.FindColumn(headers, InvoiceProductNumberAliases),
		qtyShip:       utils.FindColumn(headers, InvoiceQtyShipAliases),
		pricingUnit:   utils.FindColumn(headers, InvoicePricingUnitAliases),
		packingSize:   utils.FindColumn(headers, InvoicePackingSizeAliases),
		description:   utils.FindColumn(headers, InvoiceDescriptionAliases),
		label:         utils.FindColumn(headers, InvoiceLabelAliases),
	}
	var missing []string
	if cols.productNumber < 0 {
		missing = append(missing, "ProductNumber")
	}
	if cols.qtyShip < 0 {
		missing = append(missing, "QtyShip")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: invoice is missing %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// DeliveredQuantity converts an invoice quantity to ledger units. Case-priced lines of
// non case-count products are multiplied by the case pack of packingSize; anything else,
// including an unparseable case pack, passes through unchanged.
func DeliveredQuantity(qty float64, pricingUnit, packingSize string, caseCount bool) float64 {
	if caseCount || !strings.EqualFold(strings.TrimSpace(pricingUnit), CasePricingUnit) {
		return qty
	}
	if !strings.Contains(packingSize, "/") {
		return qty
	}
	pack, ok := utils.ParseCasePack(packingSize)
	if !ok {
		return qty
	}
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromInt(int64(pack))).InexactFloat64()
}

// Normalize walks the invoice rows in file order. Products missing from the catalog are
// returned in NewProducts with group "Unassigned" so the caller can append them.
// Rows with a blank product number or a negative quantity are skipped.
func (n *InvoiceNormalizer) Normalize(table *utils.Table, lookup ProductLookup) (*NormalizedInvoice, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: empty invoice", ErrValidation)
	}
	cols, err := n.discover(table.Headers)
	if err != nil {
		return nil, err
	}

	out := &NormalizedInvoice{Lines: make([]models.DeliveryLine, 0, len(table.Rows))}
	created := make(map[string]bool)

	for _, row := range table.Rows {
		pn := strings.TrimSpace(utils.Cell(row, cols.productNumber))
		if pn == "" || utils.IsBlankCell(pn) {
			out.SkippedRows++
			continue
		}

		qty := utils.ParseQuantity(utils.Cell(row, cols.qtyShip))
		pricingUnit := utils.Cell(row, cols.pricingUnit)
		packingSize := strings.TrimSpace(utils.Cell(row, cols.packingSize))

		product, known := lookup(pn)
		if !known && !created[pn] {
			created[pn] = true
			out.NewProducts = append(out.NewProducts, models.Product{
				ProductNumber: pn,
				Description:   strings.TrimSpace(utils.Cell(row, cols.description)),
				Brand:         strings.TrimSpace(utils.Cell(row, cols.label)),
				PackageSize:   packingSize,
				Group:         models.UnassignedGroup,
				CaseCount:     false,
			})
		}

		qty = DeliveredQuantity(qty, pricingUnit, packingSize, known && product.CaseCount)
		if qty < 0 {
			out.SkippedRows++
			continue
		}

		out.Lines = append(out.Lines, models.DeliveryLine{ProductNumber: pn, Quantity: qty})
		if known {
			out.MatchedCount++
		}
	}

	return out, nil
}
