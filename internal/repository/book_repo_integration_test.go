//go:build integration
// +build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/repository/testutil"
)

func seedBooks() []models.Book {
	return []models.Book{
		{BookID: 1, Title: "Harry Potter and the Chamber of Secrets", Author: "JKR", Category: "Mystery", Price: 236, CoverFileName: "9d8f4978-0ef8-42d0-873a-4eb583439237HP2.jpg"},
		{BookID: 2, Title: "Dune", Author: "Frank Herbert", Category: "Fiction", Price: 19.99, CoverFileName: "dune.jpg"},
		{BookID: 3, Title: "Steve Jobs", Author: "Walter Isaacson", Category: "Biography", Price: 12.5, CoverFileName: "jobs.jpg"},
	}
}

func TestBookRepository_UpsertAndList_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewBookRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	if err := repo.UpsertBooks(ctx, seedBooks()); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}

	books, err := repo.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("expected 3 books, got %d", len(books))
	}
	for i, want := range seedBooks() {
		if books[i] != want {
			t.Errorf("book %d mismatch: got %+v, want %+v", i, books[i], want)
		}
	}
}

func TestBookRepository_UpsertUpdatesExisting_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewBookRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	if err := repo.UpsertBooks(ctx, seedBooks()); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}

	updated := []models.Book{{BookID: 2, Title: "Dune Messiah", Author: "Frank Herbert", Category: "Fiction", Price: 21}}
	if err := repo.UpsertBooks(ctx, updated); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}

	book, err := repo.GetBook(ctx, 2)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if book.Title != "Dune Messiah" || book.Price != 21 {
		t.Errorf("expected updated book, got %+v", book)
	}

	// New books without ids continue after the explicit ones
	fresh := []models.Book{{Title: "New Arrival", Author: "Someone", Category: "Romance", Price: 9.99}}
	if err := repo.UpsertBooks(ctx, fresh); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}
	if fresh[0].BookID != 4 {
		t.Errorf("expected assigned id 4, got %d", fresh[0].BookID)
	}
}

func TestBookRepository_GetBook_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewBookRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	if err := repo.UpsertBooks(ctx, seedBooks()); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}

	tests := []struct {
		name    string
		id      int
		wantErr error
	}{
		{"existing book", 1, nil},
		{"missing book", 99, models.ErrBookNotFound},
		{"invalid id", 0, models.ErrInvalidBookID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := repo.GetBook(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetBook() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetBook() error = %v", err)
			}
			if book.BookID != tt.id {
				t.Errorf("expected id %d, got %d", tt.id, book.BookID)
			}
		})
	}
}

func TestBookRepository_UpsertRejectsInvalid_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewBookRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	err := repo.UpsertBooks(ctx, []models.Book{{BookID: 1, Title: "  ", Price: 1}})
	if !errors.Is(err, models.ErrInvalidTitle) {
		t.Errorf("expected ErrInvalidTitle, got %v", err)
	}

	books, err := repo.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if len(books) != 0 {
		t.Errorf("expected nothing written, got %d books", len(books))
	}
}

func TestBookRepository_DeleteAll_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewBookRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	if err := repo.UpsertBooks(ctx, seedBooks()); err != nil {
		t.Fatalf("UpsertBooks() error = %v", err)
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	books, err := repo.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks() error = %v", err)
	}
	if books == nil || len(books) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", books)
	}
}
