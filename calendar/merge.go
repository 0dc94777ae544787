package calendar

import "sofia-api/domain"

// Merge overlays persisted records onto a generated grid by ISO date. Cells
// with a matching record take its notes and moods; the rest keep empty
// collections. Records outside the grid are ignored. grid is not modified.
func Merge(grid []domain.Day, records []domain.DayRecord) []domain.Day {
	byISO := make(map[string]domain.DayRecord, len(records))
	for _, rec := range records {
		byISO[rec.ISO] = rec
	}

	out := make([]domain.Day, len(grid))
	for i, day := range grid {
		merged := day.Clone()
		if rec, ok := byISO[day.ISO]; ok {
			merged.Notes = domain.CloneNotes(rec.Notes)
			merged.Moods = append(domain.MoodSet{}, rec.Mood...)
		}
		out[i] = merged
	}
	return out
}

// FindDay returns the index of the day with the given ISO date.
func FindDay(days []domain.Day, iso string) (int, bool) {
	for i := range days {
		if days[i].ISO == iso {
			return i, true
		}
	}
	return -1, false
}
