package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sofia-api/calendar"
	"sofia-api/domain"
)

var (
	ErrMonthNotLoaded = errors.New("active month is not loaded")
	ErrDayNotFound    = errors.New("day is not in the active month")
	ErrNoteNotFound   = errors.New("note not found")
)

const (
	defaultWorkers        = 4
	defaultBuffer         = 256
	defaultCallTimeout    = 15 * time.Second
	defaultHandoffTimeout = 15 * time.Millisecond
)

// NoteRef points at a note inside a day.
type NoteRef struct {
	DayISO string
	NoteID string
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithClock overrides the source of "now" used for the initial month, today
// markers and locally generated grids.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithSyncWorkers sizes the background sync pool.
func WithSyncWorkers(workers, buffer int) Option {
	return func(s *Session) {
		s.workers = workers
		s.buffer = buffer
	}
}

// WithSyncTimeouts sets the per-call timeout and how long a mutation may wait
// for a free slot in the sync queue.
func WithSyncTimeouts(call, handoff time.Duration) Option {
	return func(s *Session) {
		s.callTimeout = call
		s.handoffTimeout = handoff
	}
}

// Session mirrors server state for one user. Mutations apply locally right
// away and are synced to the gateway in the background; a failed sync never
// changes local state.
type Session struct {
	gw     Gateway
	logger *log.Logger
	now    func() time.Time
	pool   *syncPool

	workers, buffer             int
	callTimeout, handoffTimeout time.Duration

	mu             sync.RWMutex
	month          time.Time
	days           map[string][]domain.Day
	selectedDay    string
	selectedNote   *NoteRef
	dayModalOpen   bool
	noteDrawerOpen bool
}

// NewSession creates a Session on the current month. Close releases its sync
// workers.
func NewSession(gw Gateway, opts ...Option) *Session {
	s := &Session{
		gw:             gw,
		logger:         log.StandardLogger(),
		now:            time.Now,
		workers:        defaultWorkers,
		buffer:         defaultBuffer,
		callTimeout:    defaultCallTimeout,
		handoffTimeout: defaultHandoffTimeout,
		days:           map[string][]domain.Day{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.month = calendar.FirstOfMonth(s.now())
	s.pool = newSyncPool(s.workers, s.buffer, s.callTimeout, s.handoffTimeout, s.logger)
	return s
}

// Close waits for queued sync calls and stops the workers. Later mutations
// still apply locally but are not synced.
func (s *Session) Close() {
	s.pool.close()
}

// Month returns the first day of the active month.
func (s *Session) Month() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.month
}

// SetMonth switches the active month without fetching it.
func (s *Session) SetMonth(t time.Time) {
	s.mu.Lock()
	s.month = calendar.FirstOfMonth(t)
	s.mu.Unlock()
}

func (s *Session) PrevMonth() { s.shiftMonth(-1) }
func (s *Session) NextMonth() { s.shiftMonth(1) }

func (s *Session) shiftMonth(n int) {
	s.mu.Lock()
	s.month = calendar.AddMonths(s.month, n)
	s.mu.Unlock()
}

// LoadMonth loads the active month.
func (s *Session) LoadMonth(ctx context.Context) error {
	return s.LoadMonthFor(ctx, s.Month())
}

// LoadMonthFor fetches the month containing t unless it is already cached.
// When the fetch fails the locally generated grid is cached instead and the
// error is returned for information only.
func (s *Session) LoadMonthFor(ctx context.Context, t time.Time) error {
	first := calendar.FirstOfMonth(t)
	key := calendar.MonthKey(first)

	s.mu.RLock()
	_, cached := s.days[key]
	s.mu.RUnlock()
	if cached {
		return nil
	}

	page, err := s.gw.FetchDays(ctx, key)
	days := page.Days
	if err == nil && len(days) == 0 {
		err = fmt.Errorf("empty days response for %s", key)
	}
	if err != nil {
		s.logger.WithError(err).WithField("month", key).Warn("load month failed; using generated days")
		days = calendar.GenerateAt(first, s.now())
	}

	s.mu.Lock()
	if _, ok := s.days[key]; !ok {
		s.days[key] = domain.CloneDays(days)
	}
	s.mu.Unlock()
	return err
}

// Days returns a copy of the active month's days, or an empty slice if the
// month has not been loaded.
func (s *Session) Days() []domain.Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days, ok := s.days[calendar.MonthKey(s.month)]
	if !ok {
		return []domain.Day{}
	}
	return domain.CloneDays(days)
}

// Day returns one day of the active month.
func (s *Session) Day(iso string) (domain.Day, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayLocked(iso)
}

func (s *Session) dayLocked(iso string) (domain.Day, bool) {
	days := s.days[calendar.MonthKey(s.month)]
	idx, ok := calendar.FindDay(days, iso)
	if !ok {
		return domain.Day{}, false
	}
	return days[idx].Clone(), true
}

func (s *Session) SelectDay(iso string) {
	s.mu.Lock()
	s.selectedDay = iso
	s.mu.Unlock()
}

func (s *Session) OpenDayModal(iso string) {
	s.mu.Lock()
	s.selectedDay = iso
	s.dayModalOpen = true
	s.mu.Unlock()
}

func (s *Session) CloseDayModal() {
	s.mu.Lock()
	s.dayModalOpen = false
	s.selectedDay = ""
	s.mu.Unlock()
}

func (s *Session) OpenNoteDrawer(iso, noteID string) {
	s.mu.Lock()
	s.noteDrawerOpen = true
	s.selectedNote = &NoteRef{DayISO: iso, NoteID: noteID}
	s.selectedDay = iso
	s.mu.Unlock()
}

func (s *Session) CloseNoteDrawer() {
	s.mu.Lock()
	s.noteDrawerOpen = false
	s.selectedNote = nil
	s.mu.Unlock()
}

func (s *Session) DayModalOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayModalOpen
}

func (s *Session) NoteDrawerOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noteDrawerOpen
}

// SelectedDay resolves the selected day against the active month.
func (s *Session) SelectedDay() (domain.Day, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedDay == "" {
		return domain.Day{}, false
	}
	return s.dayLocked(s.selectedDay)
}

// SelectedNote resolves the drawer's note against the active month.
func (s *Session) SelectedNote() (domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedNote == nil {
		return domain.Note{}, false
	}
	day, ok := s.dayLocked(s.selectedNote.DayISO)
	if !ok {
		return domain.Note{}, false
	}
	note, _, ok := domain.FindNote(day.Notes, s.selectedNote.NoteID)
	return note, ok
}

// UpsertNote replaces the note with the same id on iso or appends it, then
// syncs it. It reports false, without syncing, when the active month is not
// loaded.
func (s *Session) UpsertNote(iso string, note domain.Note) bool {
	note = note.Clone()
	if !s.updateDay(iso, func(d *domain.Day) { d.Notes = domain.UpsertNote(d.Notes, note) }) {
		return false
	}
	s.pool.submit(syncJob{op: "save_note", iso: iso, run: func(ctx context.Context) error {
		return s.gw.SaveNote(ctx, iso, note)
	}})
	return true
}

// DeleteNote removes a note locally and syncs the deletion.
func (s *Session) DeleteNote(iso, noteID string) bool {
	if !s.updateDay(iso, func(d *domain.Day) { d.Notes, _ = domain.RemoveNote(d.Notes, noteID) }) {
		return false
	}
	s.pool.submit(syncJob{op: "delete_note", iso: iso, run: func(ctx context.Context) error {
		return s.gw.DeleteNote(ctx, iso, noteID)
	}})
	return true
}

// SetMood replaces the mood set of iso and syncs it.
func (s *Session) SetMood(iso string, moods domain.MoodSet) bool {
	moods = append(domain.MoodSet{}, moods...)
	if !s.updateDay(iso, func(d *domain.Day) { d.Moods = append(domain.MoodSet{}, moods...) }) {
		return false
	}
	s.pool.submit(syncJob{op: "set_mood", iso: iso, run: func(ctx context.Context) error {
		return s.gw.SaveMoods(ctx, iso, moods)
	}})
	return true
}

// ToggleMood adds the catalog mood to iso, or removes it if already present.
func (s *Session) ToggleMood(iso string, id domain.MoodID) error {
	mood, ok := domain.LookupMood(id)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMood, id)
	}
	day, err := s.loadedDay(iso)
	if err != nil {
		return err
	}
	next := make(domain.MoodSet, 0, len(day.Moods)+1)
	removed := false
	for _, m := range day.Moods {
		if m.ID == id {
			removed = true
			continue
		}
		next = append(next, m)
	}
	if !removed {
		next = append(next, mood)
	}
	s.SetMood(iso, next)
	return nil
}

// ClearMoods empties the mood set of iso.
func (s *Session) ClearMoods(iso string) bool {
	return s.SetMood(iso, domain.MoodSet{})
}

// MoveNote moves a note between two days of the active month, appending it to
// the target. Moving onto the same day does nothing. The move is local only;
// nothing is sent to the gateway.
func (s *Session) MoveNote(noteID, fromISO, toISO string) bool {
	if fromISO == toISO {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := calendar.MonthKey(s.month)
	days, ok := s.days[key]
	if !ok {
		return false
	}
	from, ok := calendar.FindDay(days, fromISO)
	if !ok {
		return false
	}
	to, ok := calendar.FindDay(days, toISO)
	if !ok {
		return false
	}
	note, _, ok := domain.FindNote(days[from].Notes, noteID)
	if !ok {
		return false
	}

	next := append([]domain.Day(nil), days...)
	next[from].Notes, _ = domain.RemoveNote(days[from].Notes, noteID)
	next[to].Notes = append(domain.CloneNotes(next[to].Notes), note.Clone())
	s.days[key] = next
	return true
}

// ComposeNote builds a new note from a draft and upserts it on iso.
func (s *Session) ComposeNote(iso string, d domain.Draft) (domain.Note, error) {
	if _, err := s.loadedDay(iso); err != nil {
		return domain.Note{}, err
	}
	note, err := domain.NewNote(d)
	if err != nil {
		return domain.Note{}, err
	}
	s.UpsertNote(iso, note)
	return note, nil
}

// EditNote applies a drawer edit to an existing note and upserts it.
func (s *Session) EditNote(iso, noteID string, e domain.Edit) (domain.Note, error) {
	day, err := s.loadedDay(iso)
	if err != nil {
		return domain.Note{}, err
	}
	current, _, ok := domain.FindNote(day.Notes, noteID)
	if !ok {
		return domain.Note{}, fmt.Errorf("%w: %s on %s", ErrNoteNotFound, noteID, iso)
	}
	updated, err := domain.ApplyEdit(current, e)
	if err != nil {
		return domain.Note{}, err
	}
	s.UpsertNote(iso, updated)
	return updated, nil
}

func (s *Session) loadedDay(iso string) (domain.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.days[calendar.MonthKey(s.month)]; !ok {
		return domain.Day{}, ErrMonthNotLoaded
	}
	day, ok := s.dayLocked(iso)
	if !ok {
		return domain.Day{}, fmt.Errorf("%w: %s", ErrDayNotFound, iso)
	}
	return day, nil
}

// updateDay applies fn to the day iso of the active month, copying the month
// slice so earlier snapshots stay untouched. It reports whether the month is
// loaded; an iso outside the month changes nothing but still counts as loaded.
func (s *Session) updateDay(iso string, fn func(*domain.Day)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := calendar.MonthKey(s.month)
	days, ok := s.days[key]
	if !ok {
		return false
	}
	idx, found := calendar.FindDay(days, iso)
	if !found {
		return true
	}
	next := append([]domain.Day(nil), days...)
	day := days[idx].Clone()
	fn(&day)
	next[idx] = day
	s.days[key] = next
	return true
}
