package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"sofia-api/calendar"
	"sofia-api/domain"
)

// SQLite keeps days in a local database file, for running without a server.
type SQLite struct {
	db    *sql.DB
	table string
}

// NewSQLite opens (creating if needed) the database at path and its table.
func NewSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("SQLITE_PATH is not set")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers; sqlite locks the file anyway.
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db, table: quoteIdent(table)}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SQLite) Source() string { return "sqlite" }

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		iso TEXT PRIMARY KEY,
		notes TEXT NOT NULL DEFAULT '[]',
		mood TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLite) FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error) {
	start, err := calendar.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}
	first, last := calendar.MonthRange(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT iso, notes, mood FROM `+s.table+` WHERE iso >= ? AND iso <= ? ORDER BY iso`,
		first, last)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	records := []domain.DayRecord{}
	for rows.Next() {
		var iso, notes, mood string
		if err := rows.Scan(&iso, &notes, &mood); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		rec, err := decodeRecord(iso, []byte(notes), []byte(mood))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	return records, nil
}

func (s *SQLite) GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error) {
	var notes, mood string
	err := s.db.QueryRowContext(ctx, `SELECT notes, mood FROM `+s.table+` WHERE iso = ?`, iso).Scan(&notes, &mood)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DayRecord{}, false, nil
	}
	if err != nil {
		return domain.DayRecord{}, false, fmt.Errorf("get day %s: %w", iso, err)
	}
	rec, err := decodeRecord(iso, []byte(notes), []byte(mood))
	if err != nil {
		return domain.DayRecord{}, false, err
	}
	return rec, true, nil
}

func (s *SQLite) SaveNotes(ctx context.Context, iso string, notes []domain.Note) error {
	payload, err := encodeNotes(notes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO `+s.table+` (iso, notes) VALUES (?, ?)
		ON CONFLICT (iso) DO UPDATE SET notes = excluded.notes, updated_at = CURRENT_TIMESTAMP`,
		iso, string(payload))
	if err != nil {
		return fmt.Errorf("upsert notes for %s: %w", iso, err)
	}
	return nil
}

func (s *SQLite) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	payload, err := encodeMoods(moods)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO `+s.table+` (iso, mood) VALUES (?, ?)
		ON CONFLICT (iso) DO UPDATE SET mood = excluded.mood, updated_at = CURRENT_TIMESTAMP`,
		iso, string(payload))
	if err != nil {
		return fmt.Errorf("upsert mood for %s: %w", iso, err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
