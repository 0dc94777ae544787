package domain

import "errors"

var (
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrMissingNoteID     = errors.New("note id is required")
	ErrEmptyTitle        = errors.New("note title is required")
	ErrUnknownNoteType   = errors.New("unknown note type")
	ErrUnknownTaskStatus = errors.New("unknown task status")
	ErrUnknownMood       = errors.New("unknown mood")
	ErrInvalidISODate    = errors.New("invalid ISO date")
	ErrInvalidMonth      = errors.New("invalid month key")
)
