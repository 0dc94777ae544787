package storage

import (
	"context"
	"testing"

	"sofia-api/domain"
)

func sampleNotes() []domain.Note {
	return []domain.Note{
		{ID: "n1", Title: "Standup", Kind: domain.EventKind{}},
		{ID: "n2", Title: "Ship release", Body: "tag and push", Tags: []string{"tag", "and"}, Kind: domain.TaskKind{Status: domain.StatusPending}},
	}
}

// runBackendContract exercises the behaviour every Backend must share.
func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing day", func(t *testing.T) {
		_, ok, err := b.GetDay(ctx, "2025-01-15")
		if err != nil {
			t.Fatalf("get day: %v", err)
		}
		if ok {
			t.Fatal("expected no record for unsaved day")
		}
	})

	t.Run("notes and mood are independent", func(t *testing.T) {
		iso := "2025-11-04"
		if err := b.SaveNotes(ctx, iso, sampleNotes()); err != nil {
			t.Fatalf("save notes: %v", err)
		}
		happy, _ := domain.LookupMood(domain.MoodHappy)
		if err := b.SaveMoods(ctx, iso, domain.MoodSet{happy}); err != nil {
			t.Fatalf("save moods: %v", err)
		}
		if err := b.SaveNotes(ctx, iso, sampleNotes()[:1]); err != nil {
			t.Fatalf("save notes: %v", err)
		}

		rec, ok, err := b.GetDay(ctx, iso)
		if err != nil || !ok {
			t.Fatalf("get day: ok=%v err=%v", ok, err)
		}
		if len(rec.Notes) != 1 || rec.Notes[0].ID != "n1" {
			t.Fatalf("unexpected notes: %#v", rec.Notes)
		}
		if len(rec.Mood) != 1 || rec.Mood[0].ID != domain.MoodHappy {
			t.Fatalf("mood overwritten by notes upsert: %#v", rec.Mood)
		}
	})

	t.Run("mood only day has empty notes", func(t *testing.T) {
		iso := "2025-11-20"
		sad, _ := domain.LookupMood(domain.MoodSad)
		if err := b.SaveMoods(ctx, iso, domain.MoodSet{sad}); err != nil {
			t.Fatalf("save moods: %v", err)
		}
		rec, ok, err := b.GetDay(ctx, iso)
		if err != nil || !ok {
			t.Fatalf("get day: ok=%v err=%v", ok, err)
		}
		if rec.Notes == nil || len(rec.Notes) != 0 {
			t.Fatalf("expected empty notes, got %#v", rec.Notes)
		}
	})

	t.Run("fetch month is bounded", func(t *testing.T) {
		if err := b.SaveNotes(ctx, "2025-10-31", sampleNotes()); err != nil {
			t.Fatalf("save notes: %v", err)
		}
		if err := b.SaveNotes(ctx, "2025-12-01", sampleNotes()); err != nil {
			t.Fatalf("save notes: %v", err)
		}
		records, err := b.FetchMonth(ctx, "2025-11")
		if err != nil {
			t.Fatalf("fetch month: %v", err)
		}
		got := map[string]bool{}
		for _, r := range records {
			got[r.ISO] = true
		}
		if len(got) != 2 || !got["2025-11-04"] || !got["2025-11-20"] {
			t.Fatalf("unexpected month contents: %v", got)
		}
	})

	t.Run("task status survives storage", func(t *testing.T) {
		records, err := b.FetchMonth(ctx, "2025-12")
		if err != nil {
			t.Fatalf("fetch month: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		status, ok := records[0].Notes[1].Status()
		if !ok || status != domain.StatusPending {
			t.Fatalf("unexpected status %q (task=%v)", status, ok)
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		if _, err := b.FetchMonth(ctx, "2025-13"); err == nil {
			t.Fatal("expected error for invalid month")
		}
	})

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
