package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"pharmaledger_backend/pkg/utils"
)

var DB *sql.DB

// InitDB opens and pings the database connection. It returns an error
// instead of exiting so the caller can fall back to the in-memory store
// when Postgres is unreachable.
func InitDB(host, port, user, password, dbname, sslmode, dbSchemaPath string) (*sql.DB, error) {
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

	if dbSchemaPath != "" {
		if err := applySchema(db, dbSchemaPath); err != nil {
			db.Close()
			return nil, err
		}
	}

	DB = db
	utils.LogInfo("Successfully connected to the database")
	return db, nil
}

// applySchema reads and executes the db_schema.sql file. The schema is
// idempotent (CREATE TABLE IF NOT EXISTS), so running it at every boot is safe.
func applySchema(db *sql.DB, schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool
func GetDB() *sql.DB {
	return DB
}
