package domain

import "time"

// Day is one cell of a month grid.
type Day struct {
	ISO            string    `json:"iso"`
	Date           time.Time `json:"date"`
	Day            int       `json:"day"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	IsToday        bool      `json:"isToday"`
	Notes          []Note    `json:"notes"`
	Moods          MoodSet   `json:"moods"`
}

// Clone returns a deep copy of d.
func (d Day) Clone() Day {
	d.Notes = CloneNotes(d.Notes)
	d.Moods = append(MoodSet{}, d.Moods...)
	return d
}

// DayRecord is the persisted shape of a day: only notes and moods, keyed by
// ISO date.
type DayRecord struct {
	ISO   string  `json:"iso"`
	Notes []Note  `json:"notes"`
	Mood  MoodSet `json:"mood"`
}

// CloneDays deep-copies a slice of days.
func CloneDays(days []Day) []Day {
	if days == nil {
		return nil
	}
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
