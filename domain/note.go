package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoteType is the wire tag of a note variant.
type NoteType string

const (
	NoteText  NoteType = "text"
	NoteTask  NoteType = "task"
	NoteEvent NoteType = "event"
)

// TaskStatus is only carried by task notes.
type TaskStatus string

const (
	StatusCompleted TaskStatus = "completed"
	StatusPending   TaskStatus = "pending"
	StatusReminder  TaskStatus = "reminder"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusReminder:
		return true
	}
	return false
}

// Kind is the variant part of a Note: TextKind, TaskKind or EventKind.
type Kind interface {
	Type() NoteType
}

type TextKind struct{}

func (TextKind) Type() NoteType { return NoteText }

type TaskKind struct {
	Status TaskStatus
}

func (TaskKind) Type() NoteType { return NoteTask }

type EventKind struct{}

func (EventKind) Type() NoteType { return NoteEvent }

// KindFor builds the variant for a wire type. The status is only consulted
// for tasks, where an empty value means pending.
func KindFor(t NoteType, status TaskStatus) (Kind, error) {
	switch t {
	case NoteText, "":
		return TextKind{}, nil
	case NoteEvent:
		return EventKind{}, nil
	case NoteTask:
		if status == "" {
			status = StatusPending
		}
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTaskStatus, status)
		}
		return TaskKind{Status: status}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNoteType, t)
}

// Note is a single entry owned by a Day. Its ID is only unique within that day.
type Note struct {
	ID    string
	Title string
	Body  string
	Tags  []string
	Kind  Kind
}

// Type reports the variant tag; a note without a kind is plain text.
func (n Note) Type() NoteType {
	if n.Kind == nil {
		return NoteText
	}
	return n.Kind.Type()
}

// Status returns the task status and whether the note is a task.
func (n Note) Status() (TaskStatus, bool) {
	task, ok := n.Kind.(TaskKind)
	if !ok {
		return "", false
	}
	return task.Status, true
}

// Validate checks the fields required before a note may be persisted.
func (n Note) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return ErrMissingNoteID
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	if n.Tags != nil {
		n.Tags = append([]string(nil), n.Tags...)
	}
	return n
}

type noteWire struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Type   NoteType   `json:"type"`
	Body   string     `json:"body,omitempty"`
	Status TaskStatus `json:"status,omitempty"`
	Tags   []string   `json:"tags,omitempty"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	w := noteWire{
		ID:    n.ID,
		Title: n.Title,
		Type:  n.Type(),
		Body:  n.Body,
		Tags:  n.Tags,
	}
	if status, ok := n.Status(); ok {
		w.Status = status
	}
	return json.Marshal(w)
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var w noteWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := KindFor(w.Type, w.Status)
	if err != nil {
		return err
	}
	*n = Note{
		ID:    w.ID,
		Title: w.Title,
		Body:  w.Body,
		Tags:  w.Tags,
		Kind:  kind,
	}
	return nil
}
