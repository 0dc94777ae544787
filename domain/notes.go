package domain

// FindNote returns the note with the given id and its position.
func FindNote(notes []Note, id string) (Note, int, bool) {
	for i, n := range notes {
		if n.ID == id {
			return n, i, true
		}
	}
	return Note{}, -1, false
}

// UpsertNote replaces the note with a matching id in place, or appends it.
// The input slice is not modified.
func UpsertNote(notes []Note, note Note) []Note {
	out := CloneNotes(notes)
	if _, idx, ok := FindNote(out, note.ID); ok {
		out[idx] = note.Clone()
		return out
	}
	return append(out, note.Clone())
}

// RemoveNote drops every note with the given id. The bool reports whether
// anything was removed.
func RemoveNote(notes []Note, id string) ([]Note, bool) {
	out := make([]Note, 0, len(notes))
	removed := false
	for _, n := range notes {
		if n.ID == id {
			removed = true
			continue
		}
		out = append(out, n.Clone())
	}
	return out, removed
}

// CloneNotes copies notes into a fresh, non-nil slice.
func CloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
