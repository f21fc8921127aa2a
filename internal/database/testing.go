package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/strategy-tester/internal/config"
)

// SetupTestDB creates a test database connection and ensures the schema
// exists. Tests are skipped when STRATEGY_TESTER_TEST_DB is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv("STRATEGY_TESTER_TEST_DB") == "" {
		t.Skip("STRATEGY_TESTER_TEST_DB not set, skipping database test")
	}

	cfg, err := config.Load(os.Getenv("STRATEGY_TESTER_TEST_CONFIG"))
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
