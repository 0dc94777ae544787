package storage

import (
	"testing"

	"sofia-api/domain"
)

func TestDecodeDayEntity(t *testing.T) {
	data := []byte(`{"PartitionKey":"2025-11","RowKey":"2025-11-03",` +
		`"Notes":"[{\"id\":\"a\",\"title\":\"Gym\",\"type\":\"task\",\"status\":\"completed\"}]",` +
		`"Mood":"\"happy\""}`)
	rec, err := decodeDayEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ISO != "2025-11-03" {
		t.Fatalf("unexpected iso %q", rec.ISO)
	}
	if len(rec.Notes) != 1 || rec.Notes[0].Title != "Gym" {
		t.Fatalf("unexpected notes: %#v", rec.Notes)
	}
	if status, ok := rec.Notes[0].Status(); !ok || status != domain.StatusCompleted {
		t.Fatalf("unexpected status %q", status)
	}
	if len(rec.Mood) != 1 || rec.Mood[0].Label != "Happy" {
		t.Fatalf("scalar mood not normalised: %#v", rec.Mood)
	}
}

func TestDecodeDayEntityWithoutColumns(t *testing.T) {
	rec, err := decodeDayEntity([]byte(`{"PartitionKey":"2025-11","RowKey":"2025-11-09"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Notes == nil || rec.Mood == nil {
		t.Fatalf("expected empty collections, got %#v", rec)
	}
}

func TestNewTablesRequiresConnectionString(t *testing.T) {
	if _, err := NewTables("", DefaultTable); err == nil {
		t.Fatal("expected error for empty connection string")
	}
}
