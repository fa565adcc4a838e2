package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default paging values used when a query leaves them unset
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Book represents a catalog entry as served by the book API
type Book struct {
	BookID        int     `json:"bookId"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	CoverFileName string  `json:"coverFileName"`
}

// Domain errors
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrInvalidBookID   = errors.New("book id must be positive")
	ErrInvalidTitle    = errors.New("book title cannot be empty")
	ErrInvalidPrice    = errors.New("book price cannot be negative")
	ErrInvalidPage     = errors.New("page must be positive")
	ErrInvalidPageSize = errors.New("page size out of range")
)

// Validate checks the invariants required before a book is persisted
func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrInvalidTitle
	}
	if b.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// FormattedPrice returns the price the way the storefront renders it
func (b Book) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", b.Price)
}

// Matches reports whether the book title or author contains the search term,
// ignoring case. An empty term matches everything.
func (b Book) Matches(search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(b.Title), term) ||
		strings.Contains(strings.ToLower(b.Author), term)
}

// BookQuery selects one page of the filtered catalog
type BookQuery struct {
	Page     int
	PageSize int
	Search   string
	Category string
}

// Normalize fills in defaults for unset paging fields and validates the rest
func (q BookQuery) Normalize() (BookQuery, error) {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 0 {
		return q, ErrInvalidPage
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return q, ErrInvalidPageSize
	}
	if q.PageSize > 0 && q.Page > math.MaxInt/q.PageSize {
		return q, ErrInvalidPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q, nil
}

// Offset returns the index of the first item on the page
func (q BookQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// BookPage is one page of a filtered book list
type BookPage struct {
	Items      []Book
	TotalCount int
	Page       int
	PageSize   int
}

// TotalPages returns the number of pages needed for TotalCount items
func (p BookPage) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount == 0 {
		return 1
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasPrevious reports whether a page exists before this one
func (p BookPage) HasPrevious() bool {
	return p.Page > 1
}

// HasNext reports whether a page exists after this one
func (p BookPage) HasNext() bool {
	return p.Page < p.TotalPages()
}

// FilterBooks applies the search term and category filter, preserving order
func FilterBooks(books []Book, search, category string) []Book {
	filtered := make([]Book, 0, len(books))
	for _, b := range books {
		if !b.Matches(search) {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered
}

// Paginate slices the books for the given query. Pages past the end are empty.
func Paginate(books []Book, q BookQuery) BookPage {
	page := BookPage{
		Items:      []Book{},
		TotalCount: len(books),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	start := q.Offset()
	if start < 0 || start >= len(books) {
		return page
	}
	end := len(books)
	if q.PageSize < end-start {
		end = start + q.PageSize
	}
	page.Items = books[start:end]
	return page
}
