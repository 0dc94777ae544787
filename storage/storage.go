// Package storage holds the day-record stores behind the HTTP API. Every
// backend keeps one row per ISO date with independent notes and mood columns.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sofia-api/domain"
)

// Backend names accepted by Open.
const (
	BackendNone     = "none"
	BackendPostgres = "postgres"
	BackendTables   = "tables"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// DefaultTable is the table holding day rows.
const DefaultTable = "days"

var errUnknownBackend = errors.New("unknown storage backend")

// Backend is a keyed day-record store.
type Backend interface {
	// Source names the store in API responses.
	Source() string
	// FetchMonth returns the persisted days whose ISO date falls inside the
	// YYYY-MM month.
	FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error)
	GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error)
	// SaveNotes upserts the notes column of a day, leaving its moods alone.
	SaveNotes(ctx context.Context, iso string, notes []domain.Note) error
	// SaveMoods upserts the mood column of a day, leaving its notes alone.
	SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error
	Ping(ctx context.Context) error
	Close() error
}

// SchemaInitializer is implemented by backends that can create their table.
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

// Options selects and configures a backend.
type Options struct {
	Backend          string
	DatabaseURL      string
	ConnectionString string
	Table            string
	SQLitePath       string
}

// Open connects the configured backend. It returns a nil Backend for
// BackendNone, which callers treat as "persistence not configured".
func Open(ctx context.Context, opts Options) (Backend, error) {
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendNone:
		return nil, nil
	case BackendPostgres:
		return NewPostgres(ctx, opts.DatabaseURL, table)
	case BackendTables:
		return NewTables(opts.ConnectionString, table)
	case BackendSQLite:
		return NewSQLite(ctx, opts.SQLitePath, table)
	case BackendMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownBackend, opts.Backend)
}
