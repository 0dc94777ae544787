package storage

import (
	"encoding/json"
	"fmt"

	"sofia-api/domain"
)

func encodeNotes(notes []domain.Note) ([]byte, error) {
	if notes == nil {
		notes = []domain.Note{}
	}
	return json.Marshal(notes)
}

func encodeMoods(moods domain.MoodSet) ([]byte, error) {
	return json.Marshal(moods)
}

// decodeRecord builds a record from raw JSON columns. Empty columns decode
// to empty collections.
func decodeRecord(iso string, notesRaw, moodRaw []byte) (domain.DayRecord, error) {
	rec := domain.DayRecord{ISO: iso, Notes: []domain.Note{}, Mood: domain.MoodSet{}}
	if len(notesRaw) > 0 {
		var notes []domain.Note
		if err := json.Unmarshal(notesRaw, &notes); err != nil {
			return domain.DayRecord{}, fmt.Errorf("decode notes for %s: %w", iso, err)
		}
		if notes != nil {
			rec.Notes = notes
		}
	}
	if len(moodRaw) > 0 {
		if err := json.Unmarshal(moodRaw, &rec.Mood); err != nil {
			return domain.DayRecord{}, fmt.Errorf("decode mood for %s: %w", iso, err)
		}
	}
	return rec, nil
}
