package api

import "sofia-api/domain"

const maxBodySize = 64 * 1024 // 64 KiB

// sourceGenerated is reported when days come straight from the grid generator.
const sourceGenerated = "memory"

// GET /api/days response body
type daysResponse struct {
	Source string       `json:"source"`
	Days   []domain.Day `json:"days"`
}

// PATCH /api/mood request body
type moodRequest struct {
	DayISO string         `json:"dayIso"`
	Moods  domain.MoodSet `json:"moods"`
}

// POST /api/notes request body
type noteRequest struct {
	DayISO string       `json:"dayIso"`
	Note   *domain.Note `json:"note"`
}

// DELETE /api/notes request body
type deleteNoteRequest struct {
	DayISO string `json:"dayIso"`
	NoteID string `json:"noteId"`
}

type statusResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
