package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/themizzi/bookstore/internal/database"
	"github.com/themizzi/bookstore/internal/models"
)

// BookRepository handles database operations for books
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository() *BookRepository {
	return &BookRepository{
		db: database.DB,
	}
}

// NewBookRepositoryWithDB creates a new book repository with a specific database connection
func NewBookRepositoryWithDB(db *sql.DB) *BookRepository {
	return &BookRepository{
		db: db,
	}
}

// ListBooks returns the whole catalog ordered by id
func (r *BookRepository) ListBooks(ctx context.Context) ([]models.Book, error) {
	query := `
		SELECT book_id, title, author, category, price::float8, cover_file_name
		FROM books
		ORDER BY book_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(
			&book.BookID,
			&book.Title,
			&book.Author,
			&book.Category,
			&book.Price,
			&book.CoverFileName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return books, nil
}

// GetBook retrieves a book by its id
func (r *BookRepository) GetBook(ctx context.Context, id int) (*models.Book, error) {
	if id <= 0 {
		return nil, models.ErrInvalidBookID
	}

	query := `
		SELECT book_id, title, author, category, price::float8, cover_file_name
		FROM books
		WHERE book_id = $1
	`

	book := &models.Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&book.BookID,
		&book.Title,
		&book.Author,
		&book.Category,
		&book.Price,
		&book.CoverFileName,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// UpsertBooks inserts or updates the given books in one transaction.
// Books without an id get one assigned and written back into the slice.
func (r *BookRepository) UpsertBooks(ctx context.Context, books []models.Book) error {
	for i := range books {
		if err := books[i].Validate(); err != nil {
			return fmt.Errorf("book %d: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO books (book_id, title, author, category, price, cover_file_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (book_id) DO UPDATE
		SET title = EXCLUDED.title,
		    author = EXCLUDED.author,
		    category = EXCLUDED.category,
		    price = EXCLUDED.price,
		    cover_file_name = EXCLUDED.cover_file_name,
		    updated_at = EXCLUDED.updated_at
	`
	insert := `
		INSERT INTO books (title, author, category, price, cover_file_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING book_id
	`

	now := time.Now()
	explicitIDs := false
	for i := range books {
		b := &books[i]
		if b.BookID > 0 {
			explicitIDs = true
			if _, err := tx.ExecContext(ctx, upsert,
				b.BookID, b.Title, b.Author, b.Category, b.Price, b.CoverFileName, now,
			); err != nil {
				return fmt.Errorf("failed to upsert book %d: %w", b.BookID, err)
			}
			continue
		}
		if err := tx.QueryRowContext(ctx, insert,
			b.Title, b.Author, b.Category, b.Price, b.CoverFileName, now,
		).Scan(&b.BookID); err != nil {
			return fmt.Errorf("failed to insert book %q: %w", b.Title, err)
		}
	}

	// Keep the serial ahead of explicitly written ids
	if explicitIDs {
		if _, err := tx.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('books', 'book_id'), COALESCE(MAX(book_id), 1)) FROM books`,
		); err != nil {
			return fmt.Errorf("failed to advance book id sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit books: %w", err)
	}
	return nil
}

// DeleteAll removes every book
func (r *BookRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("failed to delete books: %w", err)
	}
	return nil
}
