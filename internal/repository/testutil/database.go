// Package testutil provides Postgres fixtures for integration tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/themizzi/bookstore/internal/config"
	"github.com/themizzi/bookstore/internal/database"
)

// Connection defaults for a local docker Postgres
var postgresDefaults = map[string]string{
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "postgres",
	"POSTGRES_HOSTNAME": "localhost",
	"POSTGRES_PORT":     "5432",
}

// TestDatabase is a migrated schema private to one test
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string

	adminDB  *sql.DB
	teardown sync.Once
}

// SetupTestDatabase creates and migrates a fresh schema. It is dropped when
// the test ends, or earlier through Teardown.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	connConfig, err := config.LoadPostgresConfig(envWithDefaults)
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}
	connStr := connConfig.ConnectionString()

	adminDB, err := database.Open(connStr)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := adminDB.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		adminDB.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	td := &TestDatabase{SchemaName: schema, adminDB: adminDB}
	t.Cleanup(func() { td.Teardown(t) })

	td.DB, err = database.Open(fmt.Sprintf("%s search_path=%s", connStr, schema))
	if err != nil {
		t.Fatalf("Failed to connect to schema %s: %v", schema, err)
	}
	td.DB.SetMaxOpenConns(5)
	td.DB.SetMaxIdleConns(2)

	if err := database.Migrate(td.DB); err != nil {
		t.Fatalf("Failed to migrate schema %s: %v", schema, err)
	}
	return td
}

// Teardown closes the connections and drops the schema; later calls are no-ops
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	td.teardown.Do(func() {
		if td.DB != nil {
			td.DB.Close()
		}
		if _, err := td.adminDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName)); err != nil {
			t.Logf("Warning: failed to drop schema %s: %v", td.SchemaName, err)
		}
		td.adminDB.Close()
	})
}

func envWithDefaults(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return postgresDefaults[key]
}
