package db

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db   *sql.DB
	once sync.Once
)

const schema = `
CREATE TABLE IF NOT EXISTS GarageVehicle (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	brand TEXT NOT NULL,
	model TEXT NOT NULL,
	year TEXT NOT NULL,
	tires TEXT NOT NULL DEFAULT '{}',
	wheel TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_garage_owner ON GarageVehicle(owner);

CREATE TABLE IF NOT EXISTS Product (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	stock INTEGER NOT NULL DEFAULT 0,
	storehouse TEXT NOT NULL DEFAULT '{}',
	provider_stock TEXT NOT NULL DEFAULT '{}',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Init opens the database and creates missing tables
func Init(databaseURL string) error {
	var err error
	once.Do(func() {
		db, err = sql.Open("sqlite3", databaseURL)
		if err != nil {
			log.Printf("[db] Failed to open database: %v", err)
			return
		}

		if err = db.Ping(); err != nil {
			log.Printf("[db] Failed to ping database: %v", err)
			return
		}

		if err = Migrate(); err != nil {
			log.Printf("[db] Failed to migrate database: %v", err)
			return
		}

		log.Printf("[db] Database initialized successfully: %s", databaseURL)
	})
	return err
}

// Migrate creates the tables if they do not exist
func Migrate() error {
	if _, err := Get().Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the database connection
func Get() *sql.DB {
	if db == nil {
		panic("Database not initialized. Call db.Init() first.")
	}
	return db
}

// SetForTesting sets the database connection for testing
func SetForTesting(database *sql.DB) {
	db = database
}

func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable
func Ping() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.Ping()
}

// Query executes a query that returns rows
func Query(query string, args ...any) (*sql.Rows, error) {
	return Get().Query(query, args...)
}

// QueryRow executes a query that returns a single row
func QueryRow(query string, args ...any) *sql.Row {
	return Get().QueryRow(query, args...)
}

// Exec executes a query that doesn't return rows
func Exec(query string, args ...any) (sql.Result, error) {
	return Get().Exec(query, args...)
}

// Begin starts a new transaction
func Begin() (*sql.Tx, error) {
	return Get().Begin()
}
