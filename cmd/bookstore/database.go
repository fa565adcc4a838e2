package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/themizzi/bookstore/internal/config"
	"github.com/themizzi/bookstore/internal/database"
	"github.com/themizzi/bookstore/internal/models"
	"github.com/themizzi/bookstore/internal/repository"
	"github.com/themizzi/bookstore/internal/services"
)

// MigrateCommand returns the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the books table",
		Action: func(c *cli.Context) error {
			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			return database.RunMigrations()
		},
	}
}

// SeedCommand returns the seed command
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load books into the database from a JSON file or the remote book API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "JSON array of books",
				Value: "data/books.json",
			},
			&cli.BoolFlag{
				Name:  "from-api",
				Usage: "copy the catalog from BOOK_API_URL instead of --file",
			},
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "delete existing books first",
			},
		},
		Action: func(c *cli.Context) error {
			var books []models.Book
			var err error
			if c.Bool("from-api") {
				books, err = booksFromAPI(c)
			} else {
				books, err = booksFromFile(c.String("file"))
			}
			if err != nil {
				return err
			}

			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}

			repo := repository.NewBookRepository()
			if c.Bool("replace") {
				if err := repo.DeleteAll(c.Context); err != nil {
					return err
				}
			}
			if err := repo.UpsertBooks(c.Context, books); err != nil {
				return err
			}

			log.Printf("Seeded %d books", len(books))
			return nil
		},
	}
}

func booksFromFile(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return books, nil
}

func booksFromAPI(c *cli.Context) ([]models.Book, error) {
	bookConfig, err := config.LoadBookAPIConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid book source configuration: %w", err)
	}

	log.Printf("Fetching books from %s", bookConfig.BaseURL)
	return services.NewBookAPIClient(bookConfig, nil).ListBooks(c.Context)
}
