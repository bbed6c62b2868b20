package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/pkg/utils"
)

func newTestCatalog(t *testing.T, products ...models.Product) (CatalogService, repositories.CatalogRepository) {
	t.Helper()
	dir := t.TempDir()
	repo := repositories.NewFileCatalogRepository(filepath.Join(dir, "products.csv"), filepath.Join(dir, "backups"))
	if len(products) > 0 {
		if err := repo.Save(products); err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
	svc, err := NewCatalogService(repo, nil)
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc, repo
}

// fixedClock returns the same instant on every call.
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func newTestLedger(t *testing.T) (LedgerService, repositories.LedgerRepository) {
	t.Helper()
	repo := repositories.NewFileLedgerRepository(t.TempDir())
	svc, err := NewLedgerService(repo, fixedClock(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}
	return svc, repo
}

// failingLedgerRepo loads an empty ledger and fails every save.
type failingLedgerRepo struct{}

func (failingLedgerRepo) Load() (*models.LedgerState, error) { return models.NewLedgerState(), nil }

func (failingLedgerRepo) Save(*models.LedgerState, ...repositories.LedgerDocument) error {
	return fmt.Errorf("%w: disk full", repositories.ErrPersistence)
}

func table(headers []string, rows ...[]string) *utils.Table {
	return &utils.Table{Headers: headers, Rows: rows}
}

func product(pn, pack string) models.Product {
	return models.Product{ProductNumber: pn, Description: "desc " + pn, PackageSize: pack, Group: models.DefaultGroup}
}

func productNumbers(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductNumber)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
