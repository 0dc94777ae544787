package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "days.db")
	s, err := NewSQLite(context.Background(), path, DefaultTable)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteBackend(t *testing.T) {
	runBackendContract(t, newTestSQLite(t))
}

func TestSQLiteEnsureSchemaIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	for i := 0; i < 2; i++ {
		if err := s.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("ensure schema #%d: %v", i, err)
		}
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	if _, err := NewSQLite(context.Background(), "", DefaultTable); err == nil {
		t.Fatal("expected error for empty path")
	}
}
