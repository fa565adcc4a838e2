package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/services"
)

// BookAPIHandler serves the catalog as JSON in the same shape as the upstream book API
type BookAPIHandler struct {
	source services.BookSource
}

// NewBookAPIHandler creates a new book API handler
func NewBookAPIHandler(source services.BookSource) *BookAPIHandler {
	return &BookAPIHandler{
		source: source,
	}
}

// ServeHTTP handles GET /api/book and GET /api/book/{id}
func (h *BookAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawID := r.PathValue("id")
	if rawID == "" {
		h.list(w, r)
		return
	}

	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		sendErrorResponse(w, services.MessageBookNotFound, http.StatusNotFound)
		return
	}
	h.get(w, r, id)
}

func (h *BookAPIHandler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.source.ListBooks(r.Context())
	if err != nil {
		log.Printf("Error listing books: %v", err)
		sendErrorResponse(w, services.ListErrorMessage(err), http.StatusBadGateway)
		return
	}
	writeJSON(w, books)
}

func (h *BookAPIHandler) get(w http.ResponseWriter, r *http.Request, id int) {
	book, err := h.source.GetBook(r.Context(), id)
	if errors.Is(err, models.ErrBookNotFound) {
		sendErrorResponse(w, services.MessageBookNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error getting book %d: %v", id, err)
		sendErrorResponse(w, services.DetailsErrorMessage(err), http.StatusBadGateway)
		return
	}
	writeJSON(w, book)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
