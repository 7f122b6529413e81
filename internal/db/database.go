package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDatabase initializes SQLite database and creates tables
func InitDatabase(dbPath string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("Database initialized at: %s", dbPath)
	return nil
}

// createTables creates all necessary tables
func createTables() error {
	createDecksTable := `
	CREATE TABLE IF NOT EXISTS decks (
		deck_key TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := DB.Exec(createDecksTable); err != nil {
		return fmt.Errorf("failed to create decks table: %w", err)
	}

	createSlidesTable := `
	CREATE TABLE IF NOT EXISTS slides (
		deck_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		src TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (deck_key, position),
		FOREIGN KEY (deck_key) REFERENCES decks(deck_key) ON DELETE CASCADE
	);`

	if _, err := DB.Exec(createSlidesTable); err != nil {
		return fmt.Errorf("failed to create slides table: %w", err)
	}

	createRoomDecksTable := `
	CREATE TABLE IF NOT EXISTS room_decks (
		room_id TEXT PRIMARY KEY,
		deck_key TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (deck_key) REFERENCES decks(deck_key) ON DELETE CASCADE
	);`

	if _, err := DB.Exec(createRoomDecksTable); err != nil {
		return fmt.Errorf("failed to create room_decks table: %w", err)
	}

	// Create index on deck_key for room lookups
	createIndex := `CREATE INDEX IF NOT EXISTS idx_room_decks_deck_key ON room_decks(deck_key);`
	if _, err := DB.Exec(createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	log.Println("Database tables created successfully")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
