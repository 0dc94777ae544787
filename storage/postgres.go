package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sofia-api/calendar"
	"sofia-api/domain"
)

// Postgres stores days in a Supabase-compatible table:
// iso text primary key, notes jsonb, mood jsonb.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres connects a pool to databaseURL.
func NewPostgres(ctx context.Context, databaseURL, table string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool, table: pgx.Identifier{table}.Sanitize()}, nil
}

func (p *Postgres) Source() string { return "supabase" }

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+p.table+` (
		iso text PRIMARY KEY,
		notes jsonb NOT NULL DEFAULT '[]'::jsonb,
		mood jsonb NOT NULL DEFAULT '[]'::jsonb,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create table %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres) FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error) {
	start, err := calendar.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}
	first, last := calendar.MonthRange(start)

	rows, err := p.pool.Query(ctx,
		`SELECT iso, notes, mood FROM `+p.table+` WHERE iso >= $1 AND iso <= $2 ORDER BY iso`,
		first, last)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	records := []domain.DayRecord{}
	for rows.Next() {
		var (
			iso         string
			notes, mood []byte
		)
		if err := rows.Scan(&iso, &notes, &mood); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		rec, err := decodeRecord(iso, notes, mood)
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

func (p *Postgres) GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error) {
	var notes, mood []byte
	err := p.pool.QueryRow(ctx, `SELECT notes, mood FROM `+p.table+` WHERE iso = $1`, iso).Scan(&notes, &mood)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DayRecord{}, false, nil
	}
	if err != nil {
		return domain.DayRecord{}, false, fmt.Errorf("get day %s: %w", iso, err)
	}
	rec, err := decodeRecord(iso, notes, mood)
	if err != nil {
		return domain.DayRecord{}, false, err
	}
	return rec, true, nil
}

func (p *Postgres) SaveNotes(ctx context.Context, iso string, notes []domain.Note) error {
	payload, err := encodeNotes(notes)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO `+p.table+` (iso, notes) VALUES ($1, $2::jsonb)
		ON CONFLICT (iso) DO UPDATE SET notes = EXCLUDED.notes, updated_at = now()`,
		iso, string(payload))
	if err != nil {
		return fmt.Errorf("upsert notes for %s: %w", iso, err)
	}
	return nil
}

func (p *Postgres) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	payload, err := encodeMoods(moods)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO `+p.table+` (iso, mood) VALUES ($1, $2::jsonb)
		ON CONFLICT (iso) DO UPDATE SET mood = EXCLUDED.mood, updated_at = now()`,
		iso, string(payload))
	if err != nil {
		return fmt.Errorf("upsert mood for %s: %w", iso, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
