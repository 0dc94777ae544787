package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Draft is what the day composer collects for a new note.
type Draft struct {
	Title  string
	Type   NoteType
	Body   string
	Status TaskStatus
}

// NewNote turns a draft into a note with a fresh id and trimmed title. Tags
// are the first two words of the body; the status is kept only for tasks.
func NewNote(d Draft) (Note, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Note{}, ErrEmptyTitle
	}
	kind, err := KindFor(d.Type, d.Status)
	if err != nil {
		return Note{}, err
	}
	return Note{
		ID:    uuid.NewString(),
		Title: title,
		Body:  d.Body,
		Tags:  TagsFromBody(d.Body),
		Kind:  kind,
	}, nil
}

// TagsFromBody derives up to two tags from the leading words of a body.
func TagsFromBody(body string) []string {
	words := strings.Fields(body)
	if len(words) > 2 {
		words = words[:2]
	}
	return append([]string{}, words...)
}

// Edit is what the note drawer saves. An empty Status leaves a task's
// status unchanged.
type Edit struct {
	Title  string
	Body   string
	Status TaskStatus
}

// ApplyEdit updates title and body, and the status when n is a task. Type,
// id and tags are preserved.
func ApplyEdit(n Note, e Edit) (Note, error) {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return Note{}, ErrEmptyTitle
	}
	out := n.Clone()
	out.Title = title
	out.Body = e.Body
	if task, ok := out.Kind.(TaskKind); ok && e.Status != "" {
		if !e.Status.Valid() {
			return Note{}, ErrUnknownTaskStatus
		}
		task.Status = e.Status
		out.Kind = task
	}
	return out, nil
}
