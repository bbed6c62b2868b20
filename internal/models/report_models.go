package models

// Inflow axes accepted by the product activity report.
const (
	InflowDeliveries = "deliveries"
	InflowOrders     = "orders"
	InflowCombined   = "combined"
)

// AllLocations selects every location in a report query.
const AllLocations = "all"

// ReportRequestParams holds the query parameters of the product activity report.
type ReportRequestParams struct {
	StartDate string `form:"start_date" json:"start_date"` // YYYY-MM-DD
	EndDate   string `form:"end_date" json:"end_date"`     // YYYY-MM-DD
	Location  string `form:"location" json:"location"`     // a location or "all"
	Inflow    string `form:"inflow" json:"inflow"`         // deliveries, orders, combined
}

// DatedQuantity is one raw observation used by the report.
type DatedQuantity struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Quantity float64 `json:"quantity"`
}

// ProductActivity is one row of the product activity report.
type ProductActivity struct {
	ProductNumber      string          `json:"product_number"`
	Description        string          `json:"description"`
	Brand              string          `json:"brand"`
	PackageSize        string          `json:"package_size"`
	Group              string          `json:"group"`
	CaseCount          bool            `json:"case_count"`
	InventoryDates     []DatedQuantity `json:"inventory_dates"`
	OrderDates         []DatedQuantity `json:"order_dates"`
	BeginningInventory float64         `json:"beginning_inventory"`
	EndingInventory    float64         `json:"ending_inventory"`
	TotalOrders        float64         `json:"total_orders"`
	Usage              float64         `json:"usage"`
	CasesRequired      float64         `json:"cases_required"`
}

// ProductActivityReport wraps the rows with the query that produced them.
type ProductActivityReport struct {
	Params   ReportRequestParams `json:"params"`
	Products []ProductActivity   `json:"products"`
}

// OfficialOrderRequest is the body of POST /api/orders/calculate.
type OfficialOrderRequest struct {
	Location      string `json:"location" binding:"required"`
	OrderDate     string `json:"order_date" binding:"required"`
	InventoryDate string `json:"inventory_date" binding:"required"`
}

// OfficialOrderLine is one product that still has to be bought.
type OfficialOrderLine struct {
	ProductNumber     string  `json:"product_number"`
	Description       string  `json:"description"`
	Brand             string  `json:"brand"`
	PackageSize       string  `json:"package_size"`
	Group             string  `json:"group"`
	OrderQuantity     float64 `json:"order_quantity"`
	InventoryQuantity float64 `json:"inventory_quantity"`
	OfficialQuantity  float64 `json:"official_quantity"`
}

// OfficialOrder is the result of the official order calculation.
// Totals cover every product of the order estimate, not only the emitted lines.
type OfficialOrder struct {
	Location       string              `json:"location"`
	OrderDate      string              `json:"order_date"`
	InventoryDate  string              `json:"inventory_date"`
	Items          []OfficialOrderLine `json:"items"`
	OrderTotal     float64             `json:"order_total"`
	InventoryTotal float64             `json:"inventory_total"`
	OfficialTotal  float64             `json:"official_total"`
}
