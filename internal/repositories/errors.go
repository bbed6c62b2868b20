package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrDatabaseError wraps driver failures while reading ledger rows.
	ErrDatabaseError = errors.New("database error")

	// ErrPersistence means the catalog or a ledger document could not be written.
	// Callers keep their in-memory state and surface the failure.
	ErrPersistence = errors.New("failed to persist state")

	// ErrMalformedData is returned when a stored file, stored document or upload cannot be decoded.
	ErrMalformedData = errors.New("malformed data")
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}
