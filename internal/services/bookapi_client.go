package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/themizzi/bookstore/internal/config"
	"github.com/themizzi/bookstore/internal/metrics"
	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/retry"
)

// ErrNetwork is returned when the book API could not be reached at all
var ErrNetwork = errors.New("network error")

// StatusError is returned when the book API answers with an unexpected status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether a status is worth retrying
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// BookSource provides the full catalog and single book lookups
type BookSource interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int) (*models.Book, error)
}

// HTTPBookAPIClient implements BookSource against the remote book API
type HTTPBookAPIClient struct {
	config     *config.BookAPIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	retryDelay time.Duration
}

// NewBookAPIClient creates a new book API client
func NewBookAPIClient(cfg *config.BookAPIConfig, m *metrics.Metrics) *HTTPBookAPIClient {
	return &HTTPBookAPIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RPS)), cfg.RPS),
		metrics:    m,
		retryDelay: 250 * time.Millisecond,
	}
}

// ListBooks fetches the full catalog
func (c *HTTPBookAPIClient) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.get(ctx, c.config.BaseURL, &books); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// GetBook fetches a single book, returning models.ErrBookNotFound on 404
func (c *HTTPBookAPIClient) GetBook(ctx context.Context, id int) (*models.Book, error) {
	if id <= 0 {
		return nil, models.ErrInvalidBookID
	}

	var book models.Book
	err := c.get(ctx, fmt.Sprintf("%s/%d", c.config.BaseURL, id), &book)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, models.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

// get performs a GET with the configured number of retries on transient failures
func (c *HTTPBookAPIClient) get(ctx context.Context, url string, target interface{}) error {
	requestID := uuid.New().String()
	attempt := 0

	policy := retry.Policy{
		Attempts: c.config.Retries + 1,
		Delay:    c.retryDelay,
		Escalate: retry.Exponential,
	}

	return retry.Do(ctx, policy, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			log.Printf("Retrying book API request %s (attempt %d): %s", requestID, attempt, url)
			if c.metrics != nil {
				c.metrics.IncRetry()
			}
		}

		err := c.fetch(ctx, requestID, url, target)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return retry.Permanent(ctx.Err())
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return retry.Permanent(err)
		}
		return err
	})
}

func (c *HTTPBookAPIClient) fetch(ctx context.Context, requestID, url string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Book API error (status %d) for request %s", resp.StatusCode, requestID)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return retry.Permanent(fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}
