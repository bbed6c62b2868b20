package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

type ReportService interface {
	ProductActivity(ctx context.Context, params models.ReportRequestParams) (*models.ProductActivityReport, error)
}

type reportService struct {
	catalog CatalogService
	ledger  LedgerService
	cache   ReportCache
}

// NewReportService builds the product activity report. cache may be nil.
func NewReportService(catalog CatalogService, ledger LedgerService, cache ReportCache) ReportService {
	if cache == nil {
		cache = NewNoopReportCache()
	}
	return &reportService{catalog: catalog, ledger: ledger, cache: cache}
}

// NormalizeReportParams validates the query and fills defaults: location "all", inflow "deliveries".
func NormalizeReportParams(params models.ReportRequestParams) (models.ReportRequestParams, error) {
	params.StartDate = strings.TrimSpace(params.StartDate)
	params.EndDate = strings.TrimSpace(params.EndDate)
	params.Location = strings.TrimSpace(params.Location)
	params.Inflow = strings.ToLower(strings.TrimSpace(params.Inflow))

	if !utils.IsValidDate(params.StartDate) || !utils.IsValidDate(params.EndDate) {
		return params, fmt.Errorf("%w: start_date and end_date must be YYYY-MM-DD", ErrValidation)
	}
	if params.StartDate > params.EndDate {
		return params, fmt.Errorf("%w: start_date must not be after end_date", ErrValidation)
	}
	if params.Location == "" || strings.EqualFold(params.Location, models.AllLocations) {
		params.Location = models.AllLocations
	}
	switch params.Inflow {
	case "":
		params.Inflow = models.InflowDeliveries
	case models.InflowDeliveries, models.InflowOrders, models.InflowCombined:
	default:
		return params, fmt.Errorf("%w: inflow must be deliveries, orders or combined", ErrValidation)
	}
	return params, nil
}

func (s *reportService) ProductActivity(ctx context.Context, params models.ReportRequestParams) (*models.ProductActivityReport, error) {
	params, err := NormalizeReportParams(params)
	if err != nil {
		return nil, err
	}

	key := activityCacheKey(s.ledger.Revision(), s.catalog.Revision(), params)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	catalog := s.catalog.List()
	var rows []models.ProductActivity
	s.ledger.Read(func(state *models.LedgerState) {
		inflows := inflowStore(state, params.Inflow)
		locations := reportLocations(params.Location, state.Counts, inflows)
		rows = BuildProductActivity(catalog, state.Counts, inflows, locations, params.StartDate, params.EndDate)
	})

	report := &models.ProductActivityReport{Params: params, Products: rows}
	s.cache.Set(ctx, key, report)
	return report, nil
}

func activityCacheKey(ledgerRev, catalogRev uint64, p models.ReportRequestParams) string {
	return fmt.Sprintf("activity:%d:%d:%s:%s:%s:%s", ledgerRev, catalogRev, p.StartDate, p.EndDate, p.Inflow, p.Location)
}

func inflowStore(state *models.LedgerState, inflow string) models.QuantityStore {
	switch inflow {
	case models.InflowOrders:
		return state.Orders
	case models.InflowCombined:
		merged := state.Deliveries.Clone()
		for loc, dates := range state.Orders {
			for date, snap := range dates {
				for pn, qty := range snap {
					merged.Add(loc, date, pn, qty)
				}
			}
		}
		return merged
	default:
		return state.Deliveries
	}
}

func reportLocations(location string, stores ...models.QuantityStore) []string {
	if location != models.AllLocations {
		return []string{location}
	}
	seen := make(map[string]bool)
	var out []string
	for _, store := range stores {
		for loc := range store {
			if !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	}
	sort.Strings(out)
	return out
}

type datedKey struct {
	location string
	date     string
}

// datesInRange lists the (location, date) keys of store inside [start, end], ordered by date then location.
func datesInRange(store models.QuantityStore, locations []string, start, end string) []datedKey {
	var keys []datedKey
	for _, loc := range locations {
		for date := range store[loc] {
			if date >= start && date <= end {
				keys = append(keys, datedKey{location: loc, date: date})
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].location < keys[j].location
	})
	return keys
}

func gather(store models.QuantityStore, keys []datedKey, pn string) []models.DatedQuantity {
	var out []models.DatedQuantity
	for _, k := range keys {
		if qty, ok := store[k.location][k.date][pn]; ok {
			out = append(out, models.DatedQuantity{Date: k.date, Location: k.location, Quantity: qty})
		}
	}
	return out
}

// BuildProductActivity is the report engine. It walks the catalog in order and emits a row for
// every product with a count or an inflow inside [start, end] at one of the locations.
// Counts observed on the same date at several locations are summed before the beginning and
// ending inventory are picked.
func BuildProductActivity(catalog []models.Product, counts, inflows models.QuantityStore, locations []string, start, end string) []models.ProductActivity {
	countKeys := datesInRange(counts, locations, start, end)
	inflowKeys := datesInRange(inflows, locations, start, end)

	rows := make([]models.ProductActivity, 0)
	for _, p := range catalog {
		inventory := gather(counts, countKeys, p.ProductNumber)
		orders := gather(inflows, inflowKeys, p.ProductNumber)
		if len(inventory) == 0 && len(orders) == 0 {
			continue
		}

		beginning, ending := decimal.Zero, decimal.Zero
		if len(inventory) > 0 {
			byDate := make(map[string]decimal.Decimal)
			for _, dq := range inventory {
				byDate[dq.Date] = byDate[dq.Date].Add(decimal.NewFromFloat(dq.Quantity))
			}
			// inventory is sorted by date
			beginning = byDate[inventory[0].Date]
			ending = byDate[inventory[len(inventory)-1].Date]
		}

		total := decimal.Zero
		for _, dq := range orders {
			total = total.Add(decimal.NewFromFloat(dq.Quantity))
		}

		usage := beginning.Add(total).Sub(ending)
		cases := decimal.Zero
		if pack, ok := utils.ParseCasePack(p.PackageSize); ok {
			cases = usage.Div(decimal.NewFromInt(int64(pack))).Round(2)
		}

		if inventory == nil {
			inventory = []models.DatedQuantity{}
		}
		if orders == nil {
			orders = []models.DatedQuantity{}
		}
		rows = append(rows, models.ProductActivity{
			ProductNumber:      p.ProductNumber,
			Description:        p.Description,
			Brand:              p.Brand,
			PackageSize:        p.PackageSize,
			Group:              p.Group,
			CaseCount:          p.CaseCount,
			InventoryDates:     inventory,
			OrderDates:         orders,
			BeginningInventory: beginning.InexactFloat64(),
			EndingInventory:    ending.InexactFloat64(),
			TotalOrders:        total.InexactFloat64(),
			Usage:              usage.InexactFloat64(),
			CasesRequired:      cases.InexactFloat64(),
		})
	}
	return rows
}

// ActivityExportHeaders are the columns of the product activity download.
var ActivityExportHeaders = []string{
	"Product Number", "Product Description", "Product Brand", "Product Package Size", "Group Name",
	"Case Count Type", "Beginning Inventory", "Total Orders", "Ending Inventory", "Usage", "Cases Required",
}

// ActivityExportRows flattens a report for CSV and XLSX downloads.
func ActivityExportRows(report *models.ProductActivityReport) [][]string {
	rows := make([][]string, 0, len(report.Products))
	for _, a := range report.Products {
		caseCount := "No"
		if a.CaseCount {
			caseCount = "Yes"
		}
		rows = append(rows, []string{
			a.ProductNumber, a.Description, a.Brand, a.PackageSize, a.Group, caseCount,
			utils.FormatQuantity(a.BeginningInventory),
			utils.FormatQuantity(a.TotalOrders),
			utils.FormatQuantity(a.EndingInventory),
			utils.FormatQuantity(a.Usage),
			utils.FormatQuantity(a.CasesRequired),
		})
	}
	return rows
}
