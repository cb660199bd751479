package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/avalon-engine/internal/database"
)

// SetupTestDB connects to TEST_DATABASE_URL (or DATABASE_URL), applies the
// migrations and empties every table. Tests are skipped when neither is set.
// Exported so other packages' tests can use it.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		t.Skip("DATABASE_URL or TEST_DATABASE_URL environment variable is required for tests")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, databaseURL, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := cleanupTestData(ctx, pool); err != nil {
		t.Logf("warning: failed to cleanup test data: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// cleanupTestData removes all rows, children before parents.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{
		"chat_messages",
		"game_actions",
		"game_players",
		"games",
		"players",
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	return nil
}
