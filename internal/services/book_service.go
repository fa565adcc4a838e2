package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/themizzi/bookstore/internal/metrics"
	"github.com/themizzi/bookstore/internal/models"
)

// Messages shown to shoppers when the catalog cannot be loaded
const (
	MessageNetworkError      = "Network error. Please check your internet connection."
	MessageLoadBooksFailed   = "Failed to load books. Please try again later."
	MessageBookNotFound      = "Book not found"
	MessageLoadDetailsFailed = "Failed to load book details. Please try again later."
)

// BookService handles catalog browsing business logic
type BookService interface {
	GetBooks(ctx context.Context, query models.BookQuery) (models.BookPage, error)
	GetBookByID(ctx context.Context, id int) (*models.Book, error)
	Categories(ctx context.Context) ([]string, error)
}

// BookServiceImpl implements BookService over any BookSource
type BookServiceImpl struct {
	source  BookSource
	metrics *metrics.Metrics
}

// NewBookService creates a new book service
func NewBookService(source BookSource, m *metrics.Metrics) BookService {
	return &BookServiceImpl{
		source:  source,
		metrics: m,
	}
}

// GetBooks fetches the full catalog and derives the requested page from it
func (s *BookServiceImpl) GetBooks(ctx context.Context, query models.BookQuery) (models.BookPage, error) {
	q, err := query.Normalize()
	if err != nil {
		return models.BookPage{}, fmt.Errorf("invalid query: %w", err)
	}

	books, err := s.listBooks(ctx)
	if err != nil {
		return models.BookPage{Items: []models.Book{}, Page: q.Page, PageSize: q.PageSize}, err
	}

	filtered := models.FilterBooks(books, q.Search, q.Category)
	return models.Paginate(filtered, q), nil
}

// GetBookByID retrieves a single book
func (s *BookServiceImpl) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	if id <= 0 {
		return nil, models.ErrInvalidBookID
	}

	started := time.Now()
	book, err := s.source.GetBook(ctx, id)
	s.observe("get", started, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// Categories returns every category present in the full catalog
func (s *BookServiceImpl) Categories(ctx context.Context) ([]string, error) {
	books, err := s.listBooks(ctx)
	if err != nil {
		return []string{}, err
	}
	return models.Categories(books), nil
}

func (s *BookServiceImpl) listBooks(ctx context.Context) ([]models.Book, error) {
	started := time.Now()
	books, err := s.source.ListBooks(ctx)
	s.observe("list", started, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	return books, nil
}

func (s *BookServiceImpl) observe(operation string, started time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveSource(operation, started, err)
	}
}

// ListErrorMessage maps a GetBooks or Categories failure to the shopper-facing message
func ListErrorMessage(err error) string {
	if errors.Is(err, ErrNetwork) {
		return MessageNetworkError
	}
	return MessageLoadBooksFailed
}

// DetailsErrorMessage maps a GetBookByID failure to the shopper-facing message
func DetailsErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrBookNotFound), errors.Is(err, models.ErrInvalidBookID):
		return MessageBookNotFound
	case errors.Is(err, ErrNetwork):
		return MessageNetworkError
	default:
		return MessageLoadDetailsFailed
	}
}
