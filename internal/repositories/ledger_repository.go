package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inventory_control_backend/internal/models"
)

// LedgerDocument names one persisted part of the ledger.
type LedgerDocument string

const (
	DocCounts     LedgerDocument = "inventory_database"
	DocOrders     LedgerDocument = "orders_database"
	DocDeliveries LedgerDocument = "deliveries_database"
	DocImportLog  LedgerDocument = "invoice_import_log"
)

// AllLedgerDocuments lists every document in load order.
var AllLedgerDocuments = []LedgerDocument{DocCounts, DocOrders, DocDeliveries, DocImportLog}

// LedgerRepository persists ledger state. Save writes the named documents as one unit:
// either all of them are replaced or the call fails.
type LedgerRepository interface {
	Load() (*models.LedgerState, error)
	Save(state *models.LedgerState, docs ...LedgerDocument) error
}

func encodeDocument(state *models.LedgerState, doc LedgerDocument) ([]byte, error) {
	var payload interface{}
	switch doc {
	case DocCounts:
		payload = state.Counts
	case DocOrders:
		payload = state.Orders
	case DocDeliveries:
		payload = state.Deliveries
	case DocImportLog:
		payload = state.Imports
	default:
		return nil, fmt.Errorf("unknown ledger document %q", doc)
	}
	return json.MarshalIndent(payload, "", "  ")
}

func decodeDocument(state *models.LedgerState, doc LedgerDocument, data []byte) error {
	var err error
	switch doc {
	case DocCounts:
		err = json.Unmarshal(data, &state.Counts)
	case DocOrders:
		err = json.Unmarshal(data, &state.Orders)
	case DocDeliveries:
		err = json.Unmarshal(data, &state.Deliveries)
	case DocImportLog:
		err = json.Unmarshal(data, &state.Imports)
	default:
		return fmt.Errorf("unknown ledger document %q", doc)
	}
	if err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrMalformedData, doc, err)
	}
	return nil
}

// normalize replaces nil maps left by "null" documents.
func normalize(state *models.LedgerState) *models.LedgerState {
	if state.Counts == nil {
		state.Counts = models.QuantityStore{}
	}
	if state.Orders == nil {
		state.Orders = models.QuantityStore{}
	}
	if state.Deliveries == nil {
		state.Deliveries = models.QuantityStore{}
	}
	if state.Imports == nil {
		state.Imports = []models.ImportEntry{}
	}
	return state
}

// --- JSON files ---

type fileLedgerRepository struct {
	dir string
}

// NewFileLedgerRepository stores each ledger document as <dir>/<name>.json.
func NewFileLedgerRepository(dir string) LedgerRepository {
	return &fileLedgerRepository{dir: dir}
}

func (r *fileLedgerRepository) pathFor(doc LedgerDocument) string {
	return filepath.Join(r.dir, string(doc)+".json")
}

func (r *fileLedgerRepository) Load() (*models.LedgerState, error) {
	state := models.NewLedgerState()
	for _, doc := range AllLedgerDocuments {
		data, err := os.ReadFile(r.pathFor(doc))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrPersistence, doc, err)
		}
		if err := decodeDocument(state, doc, data); err != nil {
			return nil, err
		}
	}
	return normalize(state), nil
}

// Save writes every document to a temp file first and only then renames them into place,
// so an encoding or disk-full failure leaves all previous files untouched.
func (r *fileLedgerRepository) Save(state *models.LedgerState, docs ...LedgerDocument) error {
	type pending struct {
		tmp, target string
	}
	staged := make([]pending, 0, len(docs))
	cleanup := func() {
		for _, p := range staged {
			os.Remove(p.tmp)
		}
	}

	for _, doc := range docs {
		data, err := encodeDocument(state, doc)
		if err != nil {
			cleanup()
			return fmt.Errorf("%w: encoding %s: %v", ErrPersistence, doc, err)
		}
		target := r.pathFor(doc)
		tmp, err := writeTemp(target, data)
		if err != nil {
			cleanup()
			return fmt.Errorf("%w: writing %s: %v", ErrPersistence, doc, err)
		}
		staged = append(staged, pending{tmp: tmp, target: target})
	}

	for i, p := range staged {
		if err := os.Rename(p.tmp, p.target); err != nil {
			for _, rest := range staged[i:] {
				os.Remove(rest.tmp)
			}
			return fmt.Errorf("%w: replacing %s: %v", ErrPersistence, p.target, err)
		}
	}
	return nil
}

// --- Postgres ---

// LedgerSchema creates the document table used by the postgres backend.
const LedgerSchema = `CREATE TABLE IF NOT EXISTS ledger_documents (
	name       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type postgresLedgerRepository struct {
	db *sql.DB
}

// NewPostgresLedgerRepository stores each ledger document as a JSONB row.
func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

func (r *postgresLedgerRepository) Load() (*models.LedgerState, error) {
	state := models.NewLedgerState()
	rows, err := r.db.Query(`SELECT name, body FROM ledger_documents`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading ledger documents: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		name, body, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if err := decodeDocument(state, LedgerDocument(name), body); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ledger documents: %v", ErrDatabaseError, err)
	}
	return normalize(state), nil
}

func scanDocument(s scanner) (string, []byte, error) {
	var name string
	var body []byte
	if err := s.Scan(&name, &body); err != nil {
		return "", nil, fmt.Errorf("%w: scanning ledger document: %v", ErrDatabaseError, err)
	}
	return name, body, nil
}

func (r *postgresLedgerRepository) Save(state *models.LedgerState, docs ...LedgerDocument) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, doc := range docs {
		data, err := encodeDocument(state, doc)
		if err != nil {
			return fmt.Errorf("%w: encoding %s: %v", ErrPersistence, doc, err)
		}
		if err := upsertDocument(tx, doc, data, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing ledger documents: %v", ErrPersistence, err)
	}
	return nil
}

func upsertDocument(executor SQLExecutor, doc LedgerDocument, data []byte, now time.Time) error {
	query := `INSERT INTO ledger_documents (name, body, updated_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
	if _, err := executor.Exec(query, string(doc), string(data), now); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrPersistence, doc, err)
	}
	return nil
}
