package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/pkg/utils"
)

// ImportIDLayout formats the import id timestamp: INV-YYYYMMDD-HHMMSS.
const ImportIDLayout = "INV-20060102-150405"

// DeliveryIngest is one normalized invoice ready to be applied to the ledger.
type DeliveryIngest struct {
	Location     string
	DeliveryDate string
	Filename     string
	Lines        []models.DeliveryLine
	MatchedCount int
	NewProducts  []string
}

// LedgerService owns counts, order estimates, deliveries and the import log.
//
// Mutations are applied in memory first and then persisted. When persisting fails the
// method returns an error wrapping both ErrUnsavedChange and ErrPersistence, and the
// in-memory state stays updated.
type LedgerService interface {
	SaveCount(location, date string, snapshot models.Snapshot) error
	GetCount(location, date string) models.Snapshot
	DeleteCount(location, date string) (bool, error)

	SaveOrderSnapshot(location, date string, snapshot models.Snapshot) error
	GetOrderSnapshot(location, date string) (models.Snapshot, bool)

	GetDeliveries(location, date string) models.Snapshot
	// IngestDelivery adds every line to the delivery store and appends an import entry.
	// The entry is returned even when persisting fails.
	IngestDelivery(in DeliveryIngest) (*models.ImportEntry, error)
	ReverseImport(importID string) (*models.ImportEntry, error)
	ListImports() []models.ImportEntry

	Locations() []models.LocationDates
	// Read runs fn with the live state under the read lock. fn must not retain or modify it.
	Read(fn func(state *models.LedgerState))
	Revision() uint64
}

type ledgerService struct {
	mu       sync.RWMutex
	repo     repositories.LedgerRepository
	state    *models.LedgerState
	now      func() time.Time
	lastID   string
	revision uint64
}

// NewLedgerService loads persisted state from repo. now defaults to time.Now.
func NewLedgerService(repo repositories.LedgerRepository, now func() time.Time) (LedgerService, error) {
	state, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	s := &ledgerService{repo: repo, state: state, now: now}
	for _, e := range state.Imports {
		if e.ImportID > s.lastID {
			s.lastID = e.ImportID
		}
	}

	utils.LogInfo("Ledger loaded", map[string]interface{}{
		"count_locations":    len(state.Counts),
		"order_locations":    len(state.Orders),
		"delivery_locations": len(state.Deliveries),
		"imports":            len(state.Imports),
	})
	return s, nil
}

func validateKey(location, date string) error {
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if !utils.IsValidDate(date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, date)
	}
	return nil
}

// persist must be called with the write lock held.
func (s *ledgerService) persist(action string, docs ...repositories.LedgerDocument) error {
	s.revision++
	if err := s.repo.Save(s.state, docs...); err != nil {
		utils.LogError(err, "Failed to persist ledger", map[string]interface{}{"action": action})
		return fmt.Errorf("%s: %w: %w", action, ErrUnsavedChange, err)
	}
	return nil
}

func (s *ledgerService) SaveCount(location, date string, snapshot models.Snapshot) error {
	if err := validateKey(location, date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Counts.Replace(location, date, snapshot)
	utils.LogInfo("Count saved", map[string]interface{}{"location": location, "date": date, "products": len(snapshot)})
	return s.persist("save count", repositories.DocCounts)
}

func (s *ledgerService) GetCount(location, date string) models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, _ := s.state.Counts.Get(location, date)
	return snap
}

func (s *ledgerService) DeleteCount(location, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Counts.Delete(location, date) {
		return false, nil
	}
	utils.LogInfo("Count deleted", map[string]interface{}{"location": location, "date": date})
	return true, s.persist("delete count", repositories.DocCounts)
}

func (s *ledgerService) SaveOrderSnapshot(location, date string, snapshot models.Snapshot) error {
	if err := validateKey(location, date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Orders.Replace(location, date, snapshot)
	utils.LogInfo("Order estimate saved", map[string]interface{}{"location": location, "date": date, "products": len(snapshot)})
	return s.persist("save order estimate", repositories.DocOrders)
}

func (s *ledgerService) GetOrderSnapshot(location, date string) (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Orders.Get(location, date)
}

func (s *ledgerService) GetDeliveries(location, date string) models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, _ := s.state.Deliveries.Get(location, date)
	return snap
}

// nextImportID bumps the clock until the id sorts after the last one issued.
func (s *ledgerService) nextImportID() (string, time.Time) {
	ts := s.now().Truncate(time.Second)
	id := ts.Format(ImportIDLayout)
	if id <= s.lastID {
		if last, err := time.ParseInLocation(ImportIDLayout, s.lastID, ts.Location()); err == nil {
			ts = last.Add(time.Second)
			id = ts.Format(ImportIDLayout)
		}
	}
	for id <= s.lastID {
		ts = ts.Add(time.Second)
		id = ts.Format(ImportIDLayout)
	}
	s.lastID = id
	return id, ts
}

func (s *ledgerService) IngestDelivery(in DeliveryIngest) (*models.ImportEntry, error) {
	if err := validateKey(in.Location, in.DeliveryDate); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	added := models.QuantityStore{}
	for _, line := range in.Lines {
		s.state.Deliveries.Add(in.Location, in.DeliveryDate, line.ProductNumber, line.Quantity)
		added.Add(in.Location, in.DeliveryDate, line.ProductNumber, line.Quantity)
	}
	productsAdded, _ := added.Get(in.Location, in.DeliveryDate)

	id, ts := s.nextImportID()
	newProducts := in.NewProducts
	if newProducts == nil {
		newProducts = []string{}
	}
	entry := models.ImportEntry{
		ImportID:      id,
		Timestamp:     ts,
		Filename:      in.Filename,
		Location:      in.Location,
		DeliveryDate:  in.DeliveryDate,
		MatchedCount:  in.MatchedCount,
		NewProducts:   newProducts,
		ProductsAdded: productsAdded,
	}
	s.state.Imports = append(s.state.Imports, entry)

	utils.LogInfo("Invoice ingested", map[string]interface{}{
		"import_id":     id,
		"location":      in.Location,
		"delivery_date": in.DeliveryDate,
		"lines":         len(in.Lines),
		"new_products":  len(newProducts),
	})
	return &entry, s.persist("ingest invoice", repositories.DocDeliveries, repositories.DocImportLog)
}

func (s *ledgerService) ReverseImport(importID string) (*models.ImportEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.state.Imports {
		if e.ImportID == importID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImport, importID)
	}

	entry := s.state.Imports[idx]
	for pn, qty := range entry.ProductsAdded {
		s.state.Deliveries.Subtract(entry.Location, entry.DeliveryDate, pn, qty)
	}
	s.state.Imports = append(s.state.Imports[:idx:idx], s.state.Imports[idx+1:]...)

	utils.LogInfo("Invoice import reversed", map[string]interface{}{
		"import_id":     importID,
		"location":      entry.Location,
		"delivery_date": entry.DeliveryDate,
	})
	return &entry, s.persist("reverse import", repositories.DocDeliveries, repositories.DocImportLog)
}

func (s *ledgerService) ListImports() []models.ImportEntry {
	s.mu.RLock()
	out := make([]models.ImportEntry, len(s.state.Imports))
	copy(out, s.state.Imports)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ImportID > out[j].ImportID
	})
	return out
}

func (s *ledgerService) Locations() []models.LocationDates {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]bool)
	for _, store := range []models.QuantityStore{s.state.Counts, s.state.Orders, s.state.Deliveries} {
		for loc := range store {
			names[loc] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for loc := range names {
		sorted = append(sorted, loc)
	}
	sort.Strings(sorted)

	out := make([]models.LocationDates, 0, len(sorted))
	for _, loc := range sorted {
		out = append(out, models.LocationDates{
			Location:      loc,
			CountDates:    s.state.Counts.Dates(loc),
			OrderDates:    s.state.Orders.Dates(loc),
			DeliveryDates: s.state.Deliveries.Dates(loc),
		})
	}
	return out
}

func (s *ledgerService) Read(fn func(state *models.LedgerState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *ledgerService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
