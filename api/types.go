package api

import (
	"context"

	"sofia-api/domain"
)

// Storage abstracts persistence for handlers. A nil Storage means no store is
// configured.
type Storage interface {
	Source() string
	FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error)
	GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error)
	SaveNotes(ctx context.Context, iso string, notes []domain.Note) error
	SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error
	Ping(ctx context.Context) error
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
