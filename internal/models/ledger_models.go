package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot maps product number to quantity for one (location, date).
type Snapshot map[string]float64

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for pn, qty := range s {
		out[pn] = qty
	}
	return out
}

// Total sums every quantity in the snapshot.
func (s Snapshot) Total() float64 {
	total := 0.0
	for _, qty := range s {
		total += qty
	}
	return total
}

// QuantityStore is store[location][date][product_number] = quantity.
// Dates are YYYY-MM-DD, so lexical order is chronological order.
type QuantityStore map[string]map[string]Snapshot

// Get returns a copy of the snapshot at (location, date) and whether it exists.
func (qs QuantityStore) Get(location, date string) (Snapshot, bool) {
	dates, ok := qs[location]
	if !ok {
		return Snapshot{}, false
	}
	snap, ok := dates[date]
	if !ok {
		return Snapshot{}, false
	}
	return snap.Clone(), true
}

// Replace overwrites the snapshot at (location, date).
func (qs QuantityStore) Replace(location, date string, snap Snapshot) {
	if qs[location] == nil {
		qs[location] = make(map[string]Snapshot)
	}
	qs[location][date] = snap.Clone()
}

// Add increments (location, date, pn) by qty. The sum is taken in decimal so that
// a later Subtract of the same qty lands exactly on the previous value.
func (qs QuantityStore) Add(location, date, pn string, qty float64) {
	if qs[location] == nil {
		qs[location] = make(map[string]Snapshot)
	}
	if qs[location][date] == nil {
		qs[location][date] = make(Snapshot)
	}
	snap := qs[location][date]
	snap[pn] = decimal.NewFromFloat(snap[pn]).Add(decimal.NewFromFloat(qty)).InexactFloat64()
}

// Subtract decrements (location, date, pn) by qty. A product whose quantity drops to zero
// or below is removed, and empty date and location maps are pruned.
func (qs QuantityStore) Subtract(location, date, pn string, qty float64) {
	snap := qs[location][date]
	if snap == nil {
		return
	}
	if remaining := decimal.NewFromFloat(snap[pn]).Sub(decimal.NewFromFloat(qty)); remaining.IsPositive() {
		snap[pn] = remaining.InexactFloat64()
	} else {
		delete(snap, pn)
	}
	if len(snap) == 0 {
		delete(qs[location], date)
	}
	if len(qs[location]) == 0 {
		delete(qs, location)
	}
}

// Delete removes the whole (location, date) entry and reports whether it existed.
func (qs QuantityStore) Delete(location, date string) bool {
	dates, ok := qs[location]
	if !ok {
		return false
	}
	if _, ok := dates[date]; !ok {
		return false
	}
	delete(dates, date)
	if len(dates) == 0 {
		delete(qs, location)
	}
	return true
}

// Locations returns the location keys in sorted order.
func (qs QuantityStore) Locations() []string {
	out := make([]string, 0, len(qs))
	for loc := range qs {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Dates returns the dates recorded for location, oldest first.
func (qs QuantityStore) Dates(location string) []string {
	out := make([]string, 0, len(qs[location]))
	for d := range qs[location] {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Clone deep-copies the store.
func (qs QuantityStore) Clone() QuantityStore {
	out := make(QuantityStore, len(qs))
	for loc, dates := range qs {
		out[loc] = make(map[string]Snapshot, len(dates))
		for d, snap := range dates {
			out[loc][d] = snap.Clone()
		}
	}
	return out
}

// ImportEntry records one invoice ingestion so it can be reversed later.
// ProductsAdded holds what this invoice delivered per product, not the ledger's running total.
type ImportEntry struct {
	ImportID      string             `json:"import_id"`
	Timestamp     time.Time          `json:"timestamp"`
	Filename      string             `json:"filename"`
	Location      string             `json:"location"`
	DeliveryDate  string             `json:"delivery_date"`
	MatchedCount  int                `json:"matched_count"`
	NewProducts   []string           `json:"new_products"`
	ProductsAdded map[string]float64 `json:"products_added"`
}

// DeliveryLine is a normalized invoice row: a product and its quantity in ledger units.
type DeliveryLine struct {
	ProductNumber string  `json:"product_number"`
	Quantity      float64 `json:"quantity"`
}

// LedgerState is everything the ledger persists.
type LedgerState struct {
	Counts     QuantityStore `json:"counts"`
	Orders     QuantityStore `json:"orders"`
	Deliveries QuantityStore `json:"deliveries"`
	Imports    []ImportEntry `json:"imports"`
}

// NewLedgerState returns an empty, ready to use state.
func NewLedgerState() *LedgerState {
	return &LedgerState{
		Counts:     QuantityStore{},
		Orders:     QuantityStore{},
		Deliveries: QuantityStore{},
		Imports:    []ImportEntry{},
	}
}

// LocationDates lists the dates known for one location on each axis.
type LocationDates struct {
	Location      string   `json:"location"`
	CountDates    []string `json:"count_dates"`
	OrderDates    []string `json:"order_dates"`
	DeliveryDates []string `json:"delivery_dates"`
}
