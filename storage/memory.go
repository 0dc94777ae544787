package storage

import (
	"context"
	"sort"
	"sync"

	"sofia-api/calendar"
	"sofia-api/domain"
)

// Memory is a process-local Backend. It is what tests and single-node demos
// run against.
type Memory struct {
	mu   sync.RWMutex
	days map[string]domain.DayRecord
}

func NewMemory() *Memory {
	return &Memory{days: map[string]domain.DayRecord{}}
}

func (m *Memory) Source() string { return "memory-store" }

func (m *Memory) FetchMonth(_ context.Context, month string) ([]domain.DayRecord, error) {
	if _, err := calendar.ParseMonthKey(month); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := []domain.DayRecord{}
	for iso, rec := range m.days {
		if key, err := calendar.MonthOfISO(iso); err == nil && key == month {
			records = append(records, cloneRecord(rec))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ISO < records[j].ISO })
	return records, nil
}

func (m *Memory) GetDay(_ context.Context, iso string) (domain.DayRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.days[iso]
	if !ok {
		return domain.DayRecord{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (m *Memory) SaveNotes(_ context.Context, iso string, notes []domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.row(iso)
	rec.Notes = domain.CloneNotes(notes)
	m.days[iso] = rec
	return nil
}

func (m *Memory) SaveMoods(_ context.Context, iso string, moods domain.MoodSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.row(iso)
	rec.Mood = append(domain.MoodSet{}, moods...)
	m.days[iso] = rec
	return nil
}

// row returns the existing record for iso or a fresh empty one. Callers hold mu.
func (m *Memory) row(iso string) domain.DayRecord {
	if rec, ok := m.days[iso]; ok {
		return rec
	}
	return domain.DayRecord{ISO: iso, Notes: []domain.Note{}, Mood: domain.MoodSet{}}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func cloneRecord(rec domain.DayRecord) domain.DayRecord {
	return domain.DayRecord{
		ISO:   rec.ISO,
		Notes: domain.CloneNotes(rec.Notes),
		Mood:  append(domain.MoodSet{}, rec.Mood...),
	}
}
