package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument_CountsByRouteAndCode(t *testing.T) {
	m := New()

	ok := m.Instrument("books", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	missing := m.Instrument("book_details", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Book not found", http.StatusNotFound)
	}))

	for i := 0; i < 3; i++ {
		ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil))
	}
	missing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/99", nil))

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("books", "200")); got != 3 {
		t.Errorf("expected 3 books requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("book_details", "404")); got != 1 {
		t.Errorf("expected 1 not-found request, got %v", got)
	}
}

func TestObserveSource(t *testing.T) {
	m := New()

	m.ObserveSource("list", time.Now(), nil)
	m.ObserveSource("list", time.Now(), errors.New("boom"))
	m.ObserveSource("get", time.Now(), nil)
	m.IncRetry()
	m.IncRetry()

	if got := testutil.ToFloat64(m.sourceRequests.WithLabelValues("list", "success")); got != 1 {
		t.Errorf("expected 1 list success, got %v", got)
	}
	if got := testutil.ToFloat64(m.sourceRequests.WithLabelValues("list", "error")); got != 1 {
		t.Errorf("expected 1 list error, got %v", got)
	}
	if got := testutil.ToFloat64(m.sourceRetries); got != 2 {
		t.Errorf("expected 2 retries, got %v", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.IncRetry()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "bookstore_source_retries_total 1") {
		t.Errorf("expected retry counter in output, got:\n%s", w.Body.String())
	}
}
