package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// TestPostgresBackend runs against a real database when TEST_DATABASE_URL is set.
func TestPostgresBackend(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	table := fmt.Sprintf("days_test_%d", time.Now().UnixNano())
	p, err := NewPostgres(ctx, url, table)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_, _ = p.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+p.table)
		_ = p.Close()
	})
	if err := p.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	runBackendContract(t, p)
}

func TestPostgresRequiresURL(t *testing.T) {
	if _, err := NewPostgres(context.Background(), "", DefaultTable); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}
