package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultBookAPIURL is the public catalog the storefront reads by default
const DefaultBookAPIURL = "https://bookcart.azurewebsites.net/api/book"

// Book sources
const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
)

// BookAPIConfig holds configuration for the upstream book API client
type BookAPIConfig struct {
	Source  string
	BaseURL string
	Retries int
	Timeout time.Duration
	RPS     int
}

// LoadBookAPIConfig loads book source configuration from environment variables
func LoadBookAPIConfig(getenv func(string) string) (*BookAPIConfig, error) {
	config := &BookAPIConfig{
		Source:  strings.ToLower(getenv("BOOK_SOURCE")),
		BaseURL: strings.TrimRight(getenv("BOOK_API_URL"), "/"),
		Retries: 3,
		Timeout: 15 * time.Second,
		RPS:     10,
	}

	if config.Source == "" {
		config.Source = SourceAPI
	}
	if config.Source != SourceAPI && config.Source != SourcePostgres {
		return nil, fmt.Errorf("BOOK_SOURCE must be %q or %q, got %q", SourceAPI, SourcePostgres, config.Source)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBookAPIURL
	}

	if v := getenv("BOOK_API_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("BOOK_API_RETRIES must be a non-negative integer, got %q", v)
		}
		config.Retries = n
	}

	if v := getenv("BOOK_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("BOOK_API_TIMEOUT must be a positive duration, got %q", v)
		}
		config.Timeout = d
	}

	if v := getenv("BOOK_API_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("BOOK_API_RPS must be a positive integer, got %q", v)
		}
		config.RPS = n
	}

	return config, nil
}
