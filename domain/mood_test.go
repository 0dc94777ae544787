package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestMoodCatalogHasFiveEntries(t *testing.T) {
	catalog := MoodCatalog()
	if len(catalog) != 5 {
		t.Fatalf("expected 5 moods, got %d", len(catalog))
	}
	catalog[0].Label = "changed"
	if m, _ := LookupMood(MoodHappy); m.Label != "Happy" {
		t.Fatalf("catalog mutated through copy: %#v", m)
	}
}

func TestMoodSetNormalisation(t *testing.T) {
	happy, _ := LookupMood(MoodHappy)
	sad, _ := LookupMood(MoodSad)

	tests := []struct {
		name string
		raw  string
		want MoodSet
	}{
		{name: "scalar id", raw: `{"mood":"happy"}`, want: MoodSet{happy}},
		{name: "scalar object", raw: `{"mood":{"id":"sad","label":"Sad","color":"#3b82f6"}}`, want: MoodSet{sad}},
		{name: "missing", raw: `{}`, want: nil},
		{name: "null", raw: `{"mood":null}`, want: MoodSet{}},
		{name: "array", raw: `{"mood":[{"id":"happy","label":"Happy","color":"#fbbf24"},"sad"]}`, want: MoodSet{happy, sad}},
		{name: "empty array", raw: `{"mood":[]}`, want: MoodSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec DayRecord
			if err := json.Unmarshal([]byte(tt.raw), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(rec.Mood) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%#v)", len(rec.Mood), len(tt.want), rec.Mood)
			}
			if len(tt.want) > 0 && !reflect.DeepEqual(rec.Mood, tt.want) {
				t.Fatalf("moods = %#v, want %#v", rec.Mood, tt.want)
			}
		})
	}
}

func TestMoodSetArrayPassesThroughUnchanged(t *testing.T) {
	raw := `[{"id":"happy","label":"Sunny","color":"#000000"}]`
	var s MoodSet
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := MoodSet{{ID: MoodHappy, Label: "Sunny", Color: "#000000"}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("got %#v, want %#v", s, want)
	}
}

func TestMoodSetMarshalsNilAsEmptyArray(t *testing.T) {
	payload, err := json.Marshal(struct {
		Moods MoodSet `json:"moods"`
	}{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"moods":[]}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestCanonicalMoods(t *testing.T) {
	got, err := CanonicalMoods([]Mood{{ID: MoodMad}, {ID: MoodHappy, Label: "custom"}, {ID: MoodMad}})
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	mad, _ := LookupMood(MoodMad)
	happy, _ := LookupMood(MoodHappy)
	if !reflect.DeepEqual(got, MoodSet{mad, happy}) {
		t.Fatalf("unexpected moods %#v", got)
	}

	if _, err := CanonicalMoods([]Mood{{ID: "bored"}}); !errors.Is(err, ErrUnknownMood) {
		t.Fatalf("expected ErrUnknownMood, got %v", err)
	}

	empty, err := CanonicalMoods(nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil set, got %#v, %v", empty, err)
	}
}
