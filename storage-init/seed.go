package main

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"sofia-api/calendar"
	"sofia-api/domain"
	"sofia-api/storage"
)

//go:embed seeds.yaml
var bundledSeeds []byte

type seedFile struct {
	Days map[string][]string `yaml:"days"`
}

// seedDay holds the pending tasks for one date.
type seedDay struct {
	ISO   string
	Notes []domain.Note
}

// parseSeeds turns the YAML titles into pending task notes sorted by date.
// Ids come from the date and position, so they are stable across runs.
func parseSeeds(raw []byte) ([]seedDay, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	out := make([]seedDay, 0, len(f.Days))
	for iso, titles := range f.Days {
		if _, err := calendar.ParseISODate(iso); err != nil {
			return nil, fmt.Errorf("seed date %q: %w", iso, err)
		}
		day := seedDay{ISO: iso}
		for i, title := range titles {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			day.Notes = append(day.Notes, domain.Note{
				ID:    fmt.Sprintf("seed-%s-%d", iso, i+1),
				Title: title,
				Kind:  domain.TaskKind{Status: domain.StatusPending},
			})
		}
		if len(day.Notes) > 0 {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISO < out[j].ISO })
	return out, nil
}

// applySeeds adds the seeded notes a day does not hold yet and returns how
// many days were written. Seed notes already present are left as they are,
// so status changes made since the last run survive.
func applySeeds(ctx context.Context, store storage.Backend, days []seedDay) (int, error) {
	written := 0
	for _, day := range days {
		rec, _, err := store.GetDay(ctx, day.ISO)
		if err != nil {
			return written, fmt.Errorf("get %s: %w", day.ISO, err)
		}
		notes := rec.Notes
		added := false
		for _, n := range day.Notes {
			if _, _, ok := domain.FindNote(notes, n.ID); ok {
				continue
			}
			notes = domain.UpsertNote(notes, n)
			added = true
		}
		if !added {
			continue
		}
		if err := store.SaveNotes(ctx, day.ISO, notes); err != nil {
			return written, fmt.Errorf("save %s: %w", day.ISO, err)
		}
		written++
	}
	return written, nil
}
