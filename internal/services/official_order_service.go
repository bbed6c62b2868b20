package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

type OfficialOrderService interface {
	// Calculate returns max(0, estimate - on hand) per product of the order estimate.
	Calculate(req models.OfficialOrderRequest) (*models.OfficialOrder, error)
}

type officialOrderService struct {
	catalog CatalogService
	ledger  LedgerService
}

func NewOfficialOrderService(catalog CatalogService, ledger LedgerService) OfficialOrderService {
	return &officialOrderService{catalog: catalog, ledger: ledger}
}

func (s *officialOrderService) Calculate(req models.OfficialOrderRequest) (*models.OfficialOrder, error) {
	req.Location = strings.TrimSpace(req.Location)
	req.OrderDate = strings.TrimSpace(req.OrderDate)
	req.InventoryDate = strings.TrimSpace(req.InventoryDate)
	if err := validateKey(req.Location, req.OrderDate); err != nil {
		return nil, err
	}
	if !utils.IsValidDate(req.InventoryDate) {
		return nil, fmt.Errorf("%w: inventory_date must be YYYY-MM-DD", ErrValidation)
	}

	orders, ok := s.ledger.GetOrderSnapshot(req.Location, req.OrderDate)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrOrderSnapshotNotFound, req.Location, req.OrderDate)
	}
	inventory := s.ledger.GetCount(req.Location, req.InventoryDate)

	result := &models.OfficialOrder{
		Location:      req.Location,
		OrderDate:     req.OrderDate,
		InventoryDate: req.InventoryDate,
		Items:         []models.OfficialOrderLine{},
	}

	orderTotal, inventoryTotal, officialTotal := decimal.Zero, decimal.Zero, decimal.Zero
	for _, pn := range s.orderedProductNumbers(orders) {
		ordered := decimal.NewFromFloat(orders[pn])
		onHand := decimal.NewFromFloat(inventory[pn])
		official := decimal.Max(decimal.Zero, ordered.Sub(onHand))

		orderTotal = orderTotal.Add(ordered)
		inventoryTotal = inventoryTotal.Add(onHand)
		officialTotal = officialTotal.Add(official)

		if !official.IsPositive() {
			continue
		}
		line := models.OfficialOrderLine{
			ProductNumber:     pn,
			OrderQuantity:     ordered.InexactFloat64(),
			InventoryQuantity: onHand.InexactFloat64(),
			OfficialQuantity:  official.InexactFloat64(),
		}
		if p, ok := s.catalog.Get(pn); ok {
			line.Description = p.Description
			line.Brand = p.Brand
			line.PackageSize = p.PackageSize
			line.Group = p.Group
		}
		result.Items = append(result.Items, line)
	}

	result.OrderTotal = orderTotal.InexactFloat64()
	result.InventoryTotal = inventoryTotal.InexactFloat64()
	result.OfficialTotal = officialTotal.InexactFloat64()

	utils.LogInfo("Official order calculated", map[string]interface{}{
		"location":       req.Location,
		"order_date":     req.OrderDate,
		"inventory_date": req.InventoryDate,
		"lines":          len(result.Items),
	})
	return result, nil
}

// orderedProductNumbers lists catalog products first in catalog order, then unknown ones sorted.
func (s *officialOrderService) orderedProductNumbers(orders models.Snapshot) []string {
	out := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, p := range s.catalog.List() {
		if _, ok := orders[p.ProductNumber]; ok {
			out = append(out, p.ProductNumber)
			seen[p.ProductNumber] = true
		}
	}
	var rest []string
	for pn := range orders {
		if !seen[pn] {
			rest = append(rest, pn)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
