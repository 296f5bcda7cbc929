package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLite opens (creating if needed) the embedded results database.
func NewSQLite(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// The dispatch loop is single-threaded; one connection avoids
	// SQLITE_BUSY between it and the scheduler.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the result tables when absent.
func Migrate(db *sqlx.DB) error {
	const weekly = `CREATE TABLE IF NOT EXISTS weekly_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        student_name TEXT NOT NULL,
        subject TEXT NOT NULL,
        mark TEXT,
        date TEXT NOT NULL
    )`
	if _, err := db.Exec(weekly); err != nil {
		return fmt.Errorf("create weekly_results: %w", err)
	}

	const monthly = `CREATE TABLE IF NOT EXISTS results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        subject TEXT NOT NULL,
        score TEXT,
        date TEXT NOT NULL
    )`
	if _, err := db.Exec(monthly); err != nil {
		return fmt.Errorf("create results: %w", err)
	}

	return nil
}
