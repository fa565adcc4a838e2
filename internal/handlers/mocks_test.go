package handlers

import (
	"context"
	"fmt"

	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/services"
)

// MockBookService is a mock implementation of BookService for testing
type MockBookService struct {
	GetBooksFunc    func(context.Context, models.BookQuery) (models.BookPage, error)
	GetBookByIDFunc func(context.Context, int) (*models.Book, error)
	CategoriesFunc  func(context.Context) ([]string, error)
	lastQuery       models.BookQuery
}

func (m *MockBookService) GetBooks(ctx context.Context, query models.BookQuery) (models.BookPage, error) {
	m.lastQuery = query
	if m.GetBooksFunc != nil {
		return m.GetBooksFunc(ctx, query)
	}
	return models.BookPage{Items: []models.Book{}, Page: query.Page, PageSize: query.PageSize}, nil
}

func (m *MockBookService) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	if m.GetBookByIDFunc != nil {
		return m.GetBookByIDFunc(ctx, id)
	}
	return &models.Book{BookID: id}, nil
}

func (m *MockBookService) Categories(ctx context.Context) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return []string{}, nil
}

// MockBookSource is a mock implementation of BookSource for testing
type MockBookSource struct {
	Books []models.Book
	Err   error
}

func (m *MockBookSource) ListBooks(ctx context.Context) ([]models.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Books, nil
}

func (m *MockBookSource) GetBook(ctx context.Context, id int) (*models.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, b := range m.Books {
		if b.BookID == id {
			return &b, nil
		}
	}
	return nil, models.ErrBookNotFound
}

// catalog builds n books spread over the given categories
func catalog(n int, categories ...string) []models.Book {
	books := make([]models.Book, 0, n)
	for i := 1; i <= n; i++ {
		books = append(books, models.Book{
			BookID:   i,
			Title:    fmt.Sprintf("Test Book %d", i),
			Author:   fmt.Sprintf("Test Author %d", i),
			Category: categories[(i-1)%len(categories)],
			Price:    10 + float64(i),
		})
	}
	return books
}

// coverBase is the image host handed to page handlers under test
const coverBase = "https://covers.test/Upload"

// serviceOver wires the real book service to an in-memory catalog
func serviceOver(books []models.Book, err error) services.BookService {
	return services.NewBookService(&MockBookSource{Books: books, Err: err}, nil)
}
