package services

import (
	"fmt"
	"strings"
	"sync"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

// InvoiceImportResult is returned to the caller of an invoice upload.
type InvoiceImportResult struct {
	Entry       *models.ImportEntry `json:"entry"`
	LinesAdded  int                 `json:"lines_added"`
	SkippedRows int                 `json:"skipped_rows"`
}

type InvoiceImportService interface {
	Import(location, deliveryDate, filename string, table *utils.Table) (*InvoiceImportResult, error)
	Reverse(importID string) (*models.ImportEntry, error)
	List() []models.ImportEntry
}

type invoiceImportService struct {
	mu         sync.Mutex
	normalizer *InvoiceNormalizer
	catalog    CatalogService
	ledger     LedgerService
}

func NewInvoiceImportService(normalizer *InvoiceNormalizer, catalog CatalogService, ledger LedgerService) InvoiceImportService {
	return &invoiceImportService{normalizer: normalizer, catalog: catalog, ledger: ledger}
}

// Import normalizes the invoice, appends unknown products to the catalog and then adds
// the delivered quantities to the ledger. A catalog failure aborts before the ledger changes.
func (s *invoiceImportService) Import(location, deliveryDate, filename string, table *utils.Table) (*InvoiceImportResult, error) {
	location = strings.TrimSpace(location)
	deliveryDate = strings.TrimSpace(deliveryDate)
	if err := validateKey(location, deliveryDate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := s.normalizer.Normalize(table, s.catalog.Get)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.AppendNew(normalized.NewProducts); err != nil {
		return nil, fmt.Errorf("failed to create invoice products: %w", err)
	}

	entry, err := s.ledger.IngestDelivery(DeliveryIngest{
		Location:     location,
		DeliveryDate: deliveryDate,
		Filename:     filename,
		Lines:        normalized.Lines,
		MatchedCount: normalized.MatchedCount,
		NewProducts:  normalized.NewProductNumbers(),
	})
	if entry == nil {
		return nil, err
	}
	result := &InvoiceImportResult{
		Entry:       entry,
		LinesAdded:  len(normalized.Lines),
		SkippedRows: normalized.SkippedRows,
	}
	return result, err
}

func (s *invoiceImportService) Reverse(importID string) (*models.ImportEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ReverseImport(strings.TrimSpace(importID))
}

func (s *invoiceImportService) List() []models.ImportEntry {
	return s.ledger.ListImports()
}
