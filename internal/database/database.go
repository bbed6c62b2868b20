package database

import (
	"database/sql"
	"fmt"

	"inventory_control_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB

// InitDB opens and pings the PostgreSQL connection used by the postgres ledger backend.
func InitDB(host, port, user, password, dbname, sslmode string) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	DB = db
	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"host": host, "dbname": dbname})
	return db, nil
}

// ApplySchema executes the given DDL statements in order.
func ApplySchema(db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("could not execute schema script: %w", err)
		}
	}
	utils.LogInfo("Database schema applied", map[string]interface{}{"statements": len(statements)})
	return nil
}

// CloseDB closes the pool opened by InitDB.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
