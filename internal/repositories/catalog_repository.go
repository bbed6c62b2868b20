package repositories

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

// Catalog CSV columns, in file order.
const (
	ColProductNumber = "Product Number"
	ColDescription   = "Product Description"
	ColBrand         = "Product Brand"
	ColPackageSize   = "Product Package Size"
	ColGroup         = "Group Name"
	ColCaseCount     = "Case Count Type"
)

// CatalogHeaders is the canonical header row of the catalog file.
var CatalogHeaders = []string{ColProductNumber, ColDescription, ColBrand, ColPackageSize, ColGroup, ColCaseCount}

// Header aliases tolerated when reading a catalog file or upload.
var (
	catalogNumberAliases      = []string{ColProductNumber, "Product #", "ProductNumber", "product_number", "SKU"}
	catalogDescriptionAliases = []string{ColDescription, "Description", "ProductDescription"}
	catalogBrandAliases       = []string{ColBrand, "Brand", "ProductLabel"}
	catalogPackageAliases     = []string{ColPackageSize, "Package Size", "Pack Size", "PackingSize"}
	catalogGroupAliases       = []string{ColGroup, "Group"}
	catalogCaseCountAliases   = []string{ColCaseCount, "Case Count"}
)

// CatalogRepository persists the ordered product catalog.
type CatalogRepository interface {
	// Load returns the stored catalog. hasCaseCountColumn is false for legacy files.
	Load() (products []models.Product, hasCaseCountColumn bool, err error)
	Save(products []models.Product) error
	// Backup copies the current catalog file to a timestamped file and returns its path.
	Backup() (string, error)
	ListBackups() ([]models.CatalogBackup, error)
}

type fileCatalogRepository struct {
	path      string
	backupDir string
	now       func() time.Time
}

// NewFileCatalogRepository creates a CSV backed CatalogRepository.
func NewFileCatalogRepository(path, backupDir string) CatalogRepository {
	return &fileCatalogRepository{path: path, backupDir: backupDir, now: time.Now}
}

func (r *fileCatalogRepository) Load() ([]models.Product, bool, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Product{}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: opening catalog %s: %v", ErrPersistence, r.path, err)
	}
	defer f.Close()

	table, err := utils.ReadTable(r.path, f)
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading catalog %s: %v", ErrMalformedData, r.path, err)
	}
	if table.Headers == nil {
		return []models.Product{}, true, nil
	}
	return ParseCatalogTable(table)
}

func (r *fileCatalogRepository) Save(products []models.Product) error {
	var buf bytes.Buffer
	if err := WriteCatalogCSV(&buf, products); err != nil {
		return fmt.Errorf("%w: encoding catalog: %v", ErrPersistence, err)
	}
	return writeFileAtomic(r.path, buf.Bytes())
}

func (r *fileCatalogRepository) Backup() (string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading catalog for backup: %v", ErrPersistence, err)
	}
	if err := os.MkdirAll(r.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating backup dir: %v", ErrPersistence, err)
	}

	base := "products_" + r.now().Format("20060102_150405")
	target := filepath.Join(r.backupDir, base+".csv")
	for n := 1; fileExists(target); n++ {
		target = filepath.Join(r.backupDir, fmt.Sprintf("%s_%d.csv", base, n))
	}
	if err := writeFileAtomic(target, data); err != nil {
		return "", err
	}
	return target, nil
}

func (r *fileCatalogRepository) ListBackups() ([]models.CatalogBackup, error) {
	entries, err := os.ReadDir(r.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.CatalogBackup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing backups: %v", ErrPersistence, err)
	}
	backups := []models.CatalogBackup{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "products_") || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, models.CatalogBackup{
			Name:      e.Name(),
			Path:      filepath.Join(r.backupDir, e.Name()),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ParseCatalogTable decodes catalog rows. Missing optional columns default
// (group "OTHER", case count false); rows without a product number are skipped.
func ParseCatalogTable(table *utils.Table) ([]models.Product, bool, error) {
	numberIdx := utils.FindColumn(table.Headers, catalogNumberAliases)
	if numberIdx < 0 {
		return nil, false, fmt.Errorf("%w: missing %q column", ErrMalformedData, ColProductNumber)
	}
	descIdx := utils.FindColumn(table.Headers, catalogDescriptionAliases)
	brandIdx := utils.FindColumn(table.Headers, catalogBrandAliases)
	packIdx := utils.FindColumn(table.Headers, catalogPackageAliases)
	groupIdx := utils.FindColumn(table.Headers, catalogGroupAliases)
	caseIdx := utils.FindColumn(table.Headers, catalogCaseCountAliases)

	products := make([]models.Product, 0, len(table.Rows))
	for _, row := range table.Rows {
		pn := utils.Cell(row, numberIdx)
		if pn == "" {
			continue
		}
		group := utils.Cell(row, groupIdx)
		if group == "" {
			group = models.DefaultGroup
		}
		products = append(products, models.Product{
			ProductNumber: pn,
			Description:   utils.Cell(row, descIdx),
			Brand:         utils.Cell(row, brandIdx),
			PackageSize:   utils.Cell(row, packIdx),
			Group:         group,
			CaseCount:     parseYesNo(utils.Cell(row, caseIdx)),
		})
	}
	return products, caseIdx >= 0, nil
}

func parseYesNo(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

// CatalogRows renders products in the canonical column order.
func CatalogRows(products []models.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		caseCount := "No"
		if p.CaseCount {
			caseCount = "Yes"
		}
		rows = append(rows, []string{p.ProductNumber, p.Description, p.Brand, p.PackageSize, p.Group, caseCount})
	}
	return rows
}

// WriteCatalogCSV writes the canonical catalog CSV.
func WriteCatalogCSV(w io.Writer, products []models.Product) error {
	return utils.WriteCSV(w, CatalogHeaders, CatalogRows(products))
}
