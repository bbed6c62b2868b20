package models

// DefaultGroup is assigned to catalog rows that carry no group.
const DefaultGroup = "OTHER"

// UnassignedGroup is assigned to products auto-created from an invoice line.
const UnassignedGroup = "Unassigned"

// Product is one entry of the ordered catalog.
// Quantities for a CaseCount product are tracked in vendor cases, otherwise in package-size units.
type Product struct {
	ProductNumber string `json:"product_number" binding:"required"`
	Description   string `json:"description"`
	Brand         string `json:"brand"`
	PackageSize   string `json:"package_size"`
	Group         string `json:"group"`
	CaseCount     bool   `json:"case_count"`
}

// ProductPatch carries the optional fields of a catalog update. Nil means "leave as is".
type ProductPatch struct {
	Description *string `json:"description"`
	Brand       *string `json:"brand"`
	PackageSize *string `json:"package_size"`
	Group       *string `json:"group"`
}

// CatalogBackup describes one timestamped copy of the catalog file.
type CatalogBackup struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}
