package database

import (
	"database/sql"
	"fmt"
	"log"
)

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	book_id SERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	author VARCHAR(255) NOT NULL DEFAULT '',
	category VARCHAR(100) NOT NULL DEFAULT '',
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	cover_file_name VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_books_category ON books(category);
CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);
`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Migrate applies the schema to the given connection
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(createBooksTable); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}
	return nil
}
