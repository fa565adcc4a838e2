package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/services"
)

// BookDetailsView is the data rendered by the book details template
type BookDetailsView struct {
	Book         *models.Book
	ErrorMessage string
}

// BookDetailsHandler renders a single book
type BookDetailsHandler struct {
	template *template.Template
	service  services.BookService
}

// NewBookDetailsHandler creates a new BookDetailsHandler
func NewBookDetailsHandler(templatePath, coverBaseURL string, service services.BookService) (*BookDetailsHandler, error) {
	tmpl, err := parseTemplate(templatePath, coverBaseURL)
	if err != nil {
		return nil, err
	}

	return &BookDetailsHandler{
		template: tmpl,
		service:  service,
	}, nil
}

// ServeHTTP handles the GET /books/{id} request
func (h *BookDetailsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.render(w, http.StatusNotFound, BookDetailsView{ErrorMessage: services.MessageBookNotFound})
		return
	}

	book, err := h.service.GetBookByID(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, models.ErrBookNotFound) {
			status = http.StatusNotFound
		} else {
			log.Printf("Error loading book %d: %v", id, err)
		}
		h.render(w, status, BookDetailsView{ErrorMessage: services.DetailsErrorMessage(err)})
		return
	}

	h.render(w, http.StatusOK, BookDetailsView{Book: book})
}

func (h *BookDetailsHandler) render(w http.ResponseWriter, status int, view BookDetailsView) {
	var buf bytes.Buffer
	if err := h.template.Execute(&buf, view); err != nil {
		log.Printf("Error rendering book details: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
