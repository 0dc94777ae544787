package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MoodID identifies an entry of the fixed mood catalog.
type MoodID string

const (
	MoodHappy      MoodID = "happy"
	MoodProductive MoodID = "productive"
	MoodSad        MoodID = "sad"
	MoodConfused   MoodID = "confused"
	MoodMad        MoodID = "mad"
)

// Mood is a predefined mood option.
type Mood struct {
	ID    MoodID `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var moodCatalog = []Mood{
	{ID: MoodHappy, Label: "Happy", Color: "#fbbf24"},
	{ID: MoodProductive, Label: "Productive", Color: "#10b981"},
	{ID: MoodSad, Label: "Sad", Color: "#3b82f6"},
	{ID: MoodConfused, Label: "Confused", Color: "#a855f7"},
	{ID: MoodMad, Label: "Mad", Color: "#ef4444"},
}

// MoodCatalog returns the five mood options in palette order.
func MoodCatalog() []Mood {
	return append([]Mood(nil), moodCatalog...)
}

// LookupMood finds a catalog entry by id.
func LookupMood(id MoodID) (Mood, bool) {
	for _, m := range moodCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return Mood{}, false
}

// CanonicalMoods maps every mood to its catalog entry, rejecting ids that are
// not part of the catalog. Duplicates are collapsed, first occurrence wins.
func CanonicalMoods(moods []Mood) (MoodSet, error) {
	out := make(MoodSet, 0, len(moods))
	seen := make(map[MoodID]struct{}, len(moods))
	for _, m := range moods {
		entry, ok := LookupMood(m.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMood, m.ID)
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, entry)
	}
	return out, nil
}

// MoodSet is the mood collection of a day. It always encodes as an array and
// decodes from a missing/null value, a single mood (id string or object), or
// an array of either.
type MoodSet []Mood

func (s MoodSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Mood(s))
}

func (s *MoodSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = MoodSet{}
		return nil
	}
	if data[0] != '[' {
		m, err := decodeMood(data)
		if err != nil {
			return err
		}
		*s = MoodSet{m}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(MoodSet, 0, len(raw))
	for _, item := range raw {
		m, err := decodeMood(item)
		if err != nil {
			return err
		}
		out = append(out, m)
	}
	*s = out
	return nil
}

// decodeMood accepts either a bare id ("happy") or a mood object. Bare ids
// resolve to the catalog entry; objects pass through unchanged.
func decodeMood(data []byte) (Mood, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id MoodID
		if err := json.Unmarshal(data, &id); err != nil {
			return Mood{}, err
		}
		if m, ok := LookupMood(id); ok {
			return m, nil
		}
		return Mood{ID: id}, nil
	}
	var m Mood
	if err := json.Unmarshal(data, &m); err != nil {
		return Mood{}, err
	}
	return m, nil
}
