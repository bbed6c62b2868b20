package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/pkg/utils"
)

// CatalogService owns the ordered product catalog.
type CatalogService interface {
	List() []models.Product
	Get(productNumber string) (models.Product, bool)
	// Add inserts at the 1-based position, or appends when position is outside 1..len+1.
	Add(product models.Product, position int) (models.Product, error)
	// AppendNew appends products created during invoice ingestion in one write.
	AppendNew(products []models.Product) error
	Update(productNumber string, patch models.ProductPatch) (models.Product, error)
	SetCaseCount(productNumber string, caseCount bool) (models.Product, error)
	Delete(productNumber string) error
	// Reorder moves the listed products to the front in the given order.
	// Products not listed keep their relative order at the tail.
	Reorder(sequence []string) error
	ReplaceFromTable(table *utils.Table) (int, error)
	ListBackups() ([]models.CatalogBackup, error)
	// Revision changes after every successful mutation.
	Revision() uint64
}

type catalogService struct {
	mu       sync.RWMutex
	repo     repositories.CatalogRepository
	products []models.Product
	index    map[string]int
	revision uint64
}

// NewCatalogService loads the catalog and migrates legacy files, where products listed in
// legacyCaseCount become case-count products.
func NewCatalogService(repo repositories.CatalogRepository, legacyCaseCount []string) (CatalogService, error) {
	products, hasCaseCountColumn, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	s := &catalogService{repo: repo}
	s.products = dedupe(products)
	s.reindex()

	if !hasCaseCountColumn && len(legacyCaseCount) > 0 {
		migrated := 0
		for _, pn := range legacyCaseCount {
			if i, ok := s.index[pn]; ok && !s.products[i].CaseCount {
				s.products[i].CaseCount = true
				migrated++
			}
		}
		if err := repo.Save(s.products); err != nil {
			utils.LogError(err, "Failed to save migrated catalog")
		}
		utils.LogInfo("Legacy catalog migrated to case count column", map[string]interface{}{"migrated": migrated})
	}

	utils.LogInfo("Catalog loaded", map[string]interface{}{"products": len(s.products)})
	return s, nil
}

func dedupe(products []models.Product) []models.Product {
	seen := make(map[string]bool, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if seen[p.ProductNumber] {
			utils.LogWarn("Duplicate product number in catalog file ignored", map[string]interface{}{"product_number": p.ProductNumber})
			continue
		}
		seen[p.ProductNumber] = true
		out = append(out, p)
	}
	return out
}

func (s *catalogService) reindex() {
	s.index = make(map[string]int, len(s.products))
	for i, p := range s.products {
		s.index[p.ProductNumber] = i
	}
}

// commit backs up the current file, saves next and swaps it in.
// The backup is best-effort; a failed save leaves the in-memory catalog unchanged.
func (s *catalogService) commit(next []models.Product, action string) error {
	if path, err := s.repo.Backup(); err != nil {
		utils.LogWarn("Catalog backup failed", map[string]interface{}{"action": action, "error": err.Error()})
	} else if path != "" {
		utils.LogDebug("Catalog backup written", map[string]interface{}{"action": action, "path": path})
	}

	if err := s.repo.Save(next); err != nil {
		return fmt.Errorf("saving catalog after %s: %w", action, err)
	}
	s.products = next
	s.reindex()
	s.revision++
	return nil
}

func (s *catalogService) snapshot() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *catalogService) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *catalogService) Get(productNumber string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[productNumber]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

func (s *catalogService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func cleanProduct(p models.Product) (models.Product, error) {
	p.ProductNumber = strings.TrimSpace(p.ProductNumber)
	if p.ProductNumber == "" {
		return p, fmt.Errorf("%w: product number cannot be empty", ErrValidation)
	}
	p.Description = strings.TrimSpace(p.Description)
	p.Brand = strings.TrimSpace(p.Brand)
	p.PackageSize = strings.TrimSpace(p.PackageSize)
	p.Group = strings.TrimSpace(p.Group)
	if p.Group == "" {
		p.Group = models.DefaultGroup
	}
	return p, nil
}

func (s *catalogService) Add(product models.Product, position int) (models.Product, error) {
	product, err := cleanProduct(product)
	if err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[product.ProductNumber]; exists {
		return models.Product{}, fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ProductNumber)
	}

	next := make([]models.Product, 0, len(s.products)+1)
	if position >= 1 && position <= len(s.products)+1 {
		next = append(next, s.products[:position-1]...)
		next = append(next, product)
		next = append(next, s.products[position-1:]...)
	} else {
		next = append(next, s.products...)
		next = append(next, product)
	}

	if err := s.commit(next, "add"); err != nil {
		return models.Product{}, err
	}
	utils.LogInfo("Product added", map[string]interface{}{"product_number": product.ProductNumber, "position": position})
	return product, nil
}

func (s *catalogService) AppendNew(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		p, err := cleanProduct(p)
		if err != nil {
			return err
		}
		if _, exists := s.index[p.ProductNumber]; exists || seen[p.ProductNumber] {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ProductNumber)
		}
		seen[p.ProductNumber] = true
		next = append(next, p)
	}

	if err := s.commit(next, "invoice auto-create"); err != nil {
		return err
	}
	utils.LogInfo("Products auto-created from invoice", map[string]interface{}{"count": len(products)})
	return nil
}

func (s *catalogService) Update(productNumber string, patch models.ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productNumber]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productNumber)
	}

	next := s.snapshot()
	p := next[i]
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Brand != nil {
		p.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.PackageSize != nil {
		p.PackageSize = strings.TrimSpace(*patch.PackageSize)
	}
	if patch.Group != nil {
		p.Group = strings.TrimSpace(*patch.Group)
		if p.Group == "" {
			p.Group = models.DefaultGroup
		}
	}
	next[i] = p

	if err := s.commit(next, "update"); err != nil {
		return models.Product{}, err
	}
	utils.LogInfo("Product updated", map[string]interface{}{"product_number": productNumber})
	return p, nil
}

func (s *catalogService) SetCaseCount(productNumber string, caseCount bool) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productNumber]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productNumber)
	}

	next := s.snapshot()
	next[i].CaseCount = caseCount

	if err := s.commit(next, "update case count"); err != nil {
		return models.Product{}, err
	}
	utils.LogInfo("Product case count changed", map[string]interface{}{"product_number": productNumber, "case_count": caseCount})
	return next[i], nil
}

func (s *catalogService) Delete(productNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productNumber]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productNumber)
	}

	next := make([]models.Product, 0, len(s.products)-1)
	next = append(next, s.products[:i]...)
	next = append(next, s.products[i+1:]...)

	if err := s.commit(next, "delete"); err != nil {
		return err
	}
	utils.LogInfo("Product deleted", map[string]interface{}{"product_number": productNumber})
	return nil
}

func (s *catalogService) Reorder(sequence []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listed := make(map[string]bool, len(sequence))
	next := make([]models.Product, 0, len(s.products))
	for _, pn := range sequence {
		pn = strings.TrimSpace(pn)
		if listed[pn] {
			return fmt.Errorf("%w: %s", ErrDuplicateInSequence, pn)
		}
		i, ok := s.index[pn]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, pn)
		}
		listed[pn] = true
		next = append(next, s.products[i])
	}
	kept := 0
	for _, p := range s.products {
		if !listed[p.ProductNumber] {
			next = append(next, p)
			kept++
		}
	}

	if err := s.commit(next, "reorder"); err != nil {
		return err
	}
	utils.LogInfo("Catalog reordered", map[string]interface{}{"listed": len(sequence), "kept_at_tail": kept})
	return nil
}

func (s *catalogService) ReplaceFromTable(table *utils.Table) (int, error) {
	products, _, err := repositories.ParseCatalogTable(table)
	if err != nil {
		if errors.Is(err, repositories.ErrMalformedData) {
			return 0, fmt.Errorf("%w: %v", ErrMissingColumn, err)
		}
		return 0, err
	}
	if len(products) == 0 {
		return 0, fmt.Errorf("%w: the file contains no products", ErrValidation)
	}

	seen := make(map[string]bool, len(products))
	for i, p := range products {
		p, err := cleanProduct(p)
		if err != nil {
			return 0, err
		}
		if seen[p.ProductNumber] {
			return 0, fmt.Errorf("%w: %s appears more than once in the file", ErrDuplicateProduct, p.ProductNumber)
		}
		seen[p.ProductNumber] = true
		products[i] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(products, "replace"); err != nil {
		return 0, err
	}
	utils.LogInfo("Catalog replaced from upload", map[string]interface{}{"products": len(products)})
	return len(products), nil
}

func (s *catalogService) ListBackups() ([]models.CatalogBackup, error) {
	return s.repo.ListBackups()
}
