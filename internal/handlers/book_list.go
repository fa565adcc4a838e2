package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/services"
)

// BookListView is the data rendered by the book list template
type BookListView struct {
	Books        []models.Book
	Categories   []string
	Search       string
	Category     string
	Page         int
	PageSize     int
	TotalPages   int
	TotalCount   int
	HasPrevious  bool
	HasNext      bool
	ErrorMessage string
}

// CategoryURL links to the first page of the given category, keeping the search term
func (v BookListView) CategoryURL(category string) string {
	return listURL(v.Search, category, 1, v.PageSize)
}

// PreviousPage returns the page number the Previous button submits
func (v BookListView) PreviousPage() int {
	if v.Page <= 1 {
		return 1
	}
	return v.Page - 1
}

// NextPage returns the page number the Next button submits
func (v BookListView) NextPage() int {
	if v.Page >= v.TotalPages {
		return v.TotalPages
	}
	return v.Page + 1
}

// BookListHandler renders the filterable, paginated book list
type BookListHandler struct {
	template *template.Template
	service  services.BookService
}

// NewBookListHandler creates a new BookListHandler. Covers are linked under
// coverBaseURL; an empty base renders the list without images.
func NewBookListHandler(templatePath, coverBaseURL string, service services.BookService) (*BookListHandler, error) {
	tmpl, err := parseTemplate(templatePath, coverBaseURL)
	if err != nil {
		return nil, err
	}

	return &BookListHandler{
		template: tmpl,
		service:  service,
	}, nil
}

// ServeHTTP handles the GET /books request
func (h *BookListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query, err := parseBookQuery(r.URL.Query())
	if err == nil {
		query, err = query.Normalize()
	}
	if err != nil {
		h.render(w, http.StatusBadRequest, BookListView{
			Books:        []models.Book{},
			Page:         models.DefaultPage,
			PageSize:     models.DefaultPageSize,
			TotalPages:   1,
			ErrorMessage: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	view := BookListView{
		Search:   query.Search,
		Category: query.Category,
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	page, err := h.service.GetBooks(r.Context(), query)
	if err != nil {
		log.Printf("Error loading books: %v", err)
		view.Books = []models.Book{}
		view.TotalPages = 1
		view.ErrorMessage = services.ListErrorMessage(err)
		h.render(w, http.StatusBadGateway, view)
		return
	}

	view.Books = page.Items
	view.TotalCount = page.TotalCount
	view.TotalPages = page.TotalPages()
	view.HasPrevious = page.HasPrevious()
	view.HasNext = page.HasNext()

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		log.Printf("Error loading categories: %v", err)
		categories = []string{}
	}
	view.Categories = categories

	h.render(w, http.StatusOK, view)
}

func (h *BookListHandler) render(w http.ResponseWriter, status int, view BookListView) {
	var buf bytes.Buffer
	if err := h.template.Execute(&buf, view); err != nil {
		log.Printf("Error rendering book list: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// parseBookQuery reads q, category, page and size from the query string
func parseBookQuery(values url.Values) (models.BookQuery, error) {
	query := models.BookQuery{
		Search:   values.Get("q"),
		Category: values.Get("category"),
	}

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return query, models.ErrInvalidPage
		}
		query.Page = n
	}
	if v := values.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return query, models.ErrInvalidPageSize
		}
		query.PageSize = n
	}

	return query, nil
}

func listURL(search, category string, page, size int) string {
	values := url.Values{}
	if search != "" {
		values.Set("q", search)
	}
	if category != "" {
		values.Set("category", category)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if size != models.DefaultPageSize {
		values.Set("size", strconv.Itoa(size))
	}
	if len(values) == 0 {
		return "/books"
	}
	return "/books?" + values.Encode()
}
