package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	internalcli "github.com/themizzi/bookstore/internal/cli"
	"github.com/themizzi/bookstore/internal/config"
	"github.com/themizzi/bookstore/internal/database"
	"github.com/themizzi/bookstore/internal/handlers"
	"github.com/themizzi/bookstore/internal/metrics"
	"github.com/themizzi/bookstore/internal/repository"
	"github.com/themizzi/bookstore/internal/services"
)

// buildBookSource picks the configured catalog backend
func buildBookSource(cfg *config.BookAPIConfig, m *metrics.Metrics) (services.BookSource, func(), error) {
	if cfg.Source != config.SourcePostgres {
		log.Printf("Reading books from %s", cfg.BaseURL)
		return services.NewBookAPIClient(cfg, m), func() {}, nil
	}

	if err := database.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database successfully")

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	closer := func() {
		if err := database.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return repository.NewBookRepository(), closer, nil
}

// buildServerDependencies creates all dependencies needed for the server
func buildServerDependencies(source services.BookSource, serverConfig config.ServerConfig, m *metrics.Metrics) (internalcli.ServerDependencies, error) {
	deps := internalcli.ServerDependencies{
		ServerConfig: serverConfig,
		Metrics:      m,
	}

	bookService := services.NewBookService(source, m)

	listHandler, err := handlers.NewBookListHandler(filepath.Join(serverConfig.TemplatesDir, "book_list.html"), serverConfig.CoverBaseURL, bookService)
	if err != nil {
		return deps, fmt.Errorf("failed to create book list handler: %w", err)
	}
	deps.BookListHandler = listHandler

	detailsHandler, err := handlers.NewBookDetailsHandler(filepath.Join(serverConfig.TemplatesDir, "book_details.html"), serverConfig.CoverBaseURL, bookService)
	if err != nil {
		return deps, fmt.Errorf("failed to create book details handler: %w", err)
	}
	deps.BookDetailsHandler = detailsHandler

	deps.BookAPIHandler = handlers.NewBookAPIHandler(source)

	return deps, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the book store web server",
		Action: func(c *cli.Context) error {
			bookConfig, err := config.LoadBookAPIConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("invalid book source configuration: %w", err)
			}

			m := metrics.New()
			source, closeSource, err := buildBookSource(bookConfig, m)
			if err != nil {
				return err
			}
			defer closeSource()

			deps, err := buildServerDependencies(source, config.LoadServerConfig(os.Getenv), m)
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}
