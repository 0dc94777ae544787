package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"sofia-api/calendar"
	"sofia-api/domain"
	"sofia-api/storage"
)

// stubStore is a Storage with overridable failures on top of an in-memory store.
type stubStore struct {
	*storage.Memory
	fetchErr error
	getErr   error
	saveErr  error
	pingErr  error
	saves    int
}

func newStubStore() *stubStore { return &stubStore{Memory: storage.NewMemory()} }

func (s *stubStore) FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.Memory.FetchMonth(ctx, month)
}

func (s *stubStore) GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error) {
	if s.getErr != nil {
		return domain.DayRecord{}, false, s.getErr
	}
	return s.Memory.GetDay(ctx, iso)
}

func (s *stubStore) SaveNotes(ctx context.Context, iso string, notes []domain.Note) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Memory.SaveNotes(ctx, iso, notes)
}

func (s *stubStore) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Memory.SaveMoods(ctx, iso, moods)
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func newTestServer(store Storage, auth Authenticator) *echo.Echo {
	e := echo.New()
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	Register(e, store, auth, logger)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeDays(t *testing.T, rec *httptest.ResponseRecorder) daysResponse {
	t.Helper()
	var resp daysResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestGetDaysWithoutStore(t *testing.T) {
	e := newTestServer(nil, nil)
	rec := do(t, e, http.MethodGet, "/api/days?month=2025-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeDays(t, rec)
	if resp.Source != "memory" {
		t.Fatalf("unexpected source %q", resp.Source)
	}
	if len(resp.Days) != calendar.GridSize {
		t.Fatalf("expected %d days, got %d", calendar.GridSize, len(resp.Days))
	}
	if resp.Days[0].ISO != "2025-06-01" || resp.Days[41].ISO != "2025-07-12" {
		t.Fatalf("unexpected grid bounds %s..%s", resp.Days[0].ISO, resp.Days[41].ISO)
	}
}

func TestGetDaysDefaultsToCurrentMonth(t *testing.T) {
	e := newTestServer(nil, nil)
	rec := do(t, e, http.MethodGet, "/api/days", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeDays(t, rec)
	want := calendar.MonthKey(calendar.FirstOfMonth(time.Now()))
	current := 0
	for _, d := range resp.Days {
		if d.IsCurrentMonth {
			current++
			if got := d.ISO[:7]; got != want {
				t.Fatalf("current-month day %s outside %s", d.ISO, want)
			}
		}
	}
	if current < 28 {
		t.Fatalf("expected at least 28 current-month days, got %d", current)
	}
}

func TestGetDaysRejectsMalformedMonth(t *testing.T) {
	e := newTestServer(nil, nil)
	for _, month := range []string{"2025-13", "June", "2025-6-01"} {
		rec := do(t, e, http.MethodGet, "/api/days?month="+month, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("month %q: expected 400, got %d", month, rec.Code)
		}
	}
}

func TestGetDaysStoreFailure(t *testing.T) {
	store := newStubStore()
	store.fetchErr = errors.New("connection refused")
	e := newTestServer(store, nil)
	rec := do(t, e, http.MethodGet, "/api/days?month=2025-11", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected store message in body, got %s", rec.Body.String())
	}
}

func TestMutationsValidateBeforeConfigurationCheck(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "mood missing day", method: http.MethodPatch, path: "/api/mood", body: `{"moods":[]}`},
		{name: "mood bad day", method: http.MethodPatch, path: "/api/mood", body: `{"dayIso":"2025-02-30","moods":[]}`},
		{name: "mood unknown id", method: http.MethodPatch, path: "/api/mood", body: `{"dayIso":"2025-11-01","moods":["bored"]}`},
		{name: "note missing", method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01"}`},
		{name: "note blank title", method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"id":"a","title":"  ","type":"text"}}`},
		{name: "note missing id", method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"title":"x","type":"text"}}`},
		{name: "note unknown type", method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"id":"a","title":"x","type":"memo"}}`},
		{name: "note bad status", method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"id":"a","title":"x","type":"task","status":"later"}}`},
		{name: "delete missing id", method: http.MethodDelete, path: "/api/notes", body: `{"dayIso":"2025-11-01"}`},
		{name: "not json", method: http.MethodPost, path: "/api/notes", body: `dayIso=2025-11-01`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(nil, nil)
			rec := do(t, e, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMutationsWithoutStoreReturn501(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPatch, "/api/mood", `{"dayIso":"2025-11-01","moods":["happy"]}`},
		{http.MethodPost, "/api/notes", `{"dayIso":"2025-11-01","note":{"id":"a","title":"x","type":"text"}}`},
		{http.MethodDelete, "/api/notes", `{"dayIso":"2025-11-01","noteId":"a"}`},
	}
	for _, tt := range tests {
		e := newTestServer(nil, nil)
		rec := do(t, e, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("%s %s: expected 501, got %d", tt.method, tt.path, rec.Code)
		}
		var resp statusResponse
		if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.OK || resp.Reason == "" {
			t.Fatalf("unexpected body %#v", resp)
		}
	}
}

func TestMutationStoreFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*stubStore)
		method string
		path   string
		body   string
	}{
		{name: "mood save", setup: func(s *stubStore) { s.saveErr = errors.New("write failed") },
			method: http.MethodPatch, path: "/api/mood", body: `{"dayIso":"2025-11-01","moods":["happy"]}`},
		{name: "note read", setup: func(s *stubStore) { s.getErr = errors.New("read failed") },
			method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"id":"a","title":"x","type":"text"}}`},
		{name: "note save", setup: func(s *stubStore) { s.saveErr = errors.New("write failed") },
			method: http.MethodPost, path: "/api/notes", body: `{"dayIso":"2025-11-01","note":{"id":"a","title":"x","type":"text"}}`},
		{name: "delete read", setup: func(s *stubStore) { s.getErr = errors.New("read failed") },
			method: http.MethodDelete, path: "/api/notes", body: `{"dayIso":"2025-11-01","noteId":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			tt.setup(store)
			e := newTestServer(store, nil)
			rec := do(t, e, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "failed") {
				t.Fatalf("expected store message, got %s", rec.Body.String())
			}
		})
	}
}

func TestPostNoteThenGetDays(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)

	body := `{"dayIso":"2025-11-14","note":{"id":"abc","title":"Dentist","type":"event","color":"#fff"}}`
	if rec := do(t, e, http.MethodPost, "/api/notes", body); rec.Code != http.StatusOK {
		t.Fatalf("post note: %d %s", rec.Code, rec.Body.String())
	}

	rec := do(t, e, http.MethodGet, "/api/days?month=2025-11", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get days: %d", rec.Code)
	}
	resp := decodeDays(t, rec)
	if resp.Source != "memory-store" {
		t.Fatalf("unexpected source %q", resp.Source)
	}
	idx, ok := calendar.FindDay(resp.Days, "2025-11-14")
	if !ok {
		t.Fatal("day missing from grid")
	}
	notes := resp.Days[idx].Notes
	if len(notes) != 1 || notes[0].ID != "abc" || notes[0].Type() != domain.NoteEvent {
		t.Fatalf("unexpected notes %#v", notes)
	}
	for i, d := range resp.Days {
		if i != idx && len(d.Notes) != 0 {
			t.Fatalf("unexpected notes on %s", d.ISO)
		}
	}
}

func TestPostNoteReplacesByID(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)

	first := `{"dayIso":"2025-11-14","note":{"id":"a","title":"One","type":"text"}}`
	second := `{"dayIso":"2025-11-14","note":{"id":"b","title":"Two","type":"text"}}`
	replace := `{"dayIso":"2025-11-14","note":{"id":"a","title":"One, edited","type":"task","status":"completed"}}`
	for _, body := range []string{first, second, replace} {
		if rec := do(t, e, http.MethodPost, "/api/notes", body); rec.Code != http.StatusOK {
			t.Fatalf("post: %d", rec.Code)
		}
	}
	rec, _, _ := store.Memory.GetDay(context.Background(), "2025-11-14")
	if len(rec.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(rec.Notes))
	}
	if rec.Notes[0].ID != "a" || rec.Notes[0].Title != "One, edited" || rec.Notes[1].ID != "b" {
		t.Fatalf("unexpected notes order %#v", rec.Notes)
	}
}

func TestPatchMoodKeepsNotes(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)

	if rec := do(t, e, http.MethodPost, "/api/notes", `{"dayIso":"2025-11-02","note":{"id":"a","title":"Run","type":"text"}}`); rec.Code != http.StatusOK {
		t.Fatalf("post: %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPatch, "/api/mood", `{"dayIso":"2025-11-02","moods":[{"id":"sad","label":"x","color":"y"},"happy"]}`); rec.Code != http.StatusOK {
		t.Fatalf("patch: %d", rec.Code)
	}
	rec, _, _ := store.Memory.GetDay(context.Background(), "2025-11-02")
	if len(rec.Notes) != 1 {
		t.Fatalf("mood write clobbered notes: %#v", rec.Notes)
	}
	if len(rec.Mood) != 2 || rec.Mood[0].Label != "Sad" || rec.Mood[1].ID != domain.MoodHappy {
		t.Fatalf("moods not canonical: %#v", rec.Mood)
	}

	if rec := do(t, e, http.MethodPatch, "/api/mood", `{"dayIso":"2025-11-02"}`); rec.Code != http.StatusOK {
		t.Fatalf("patch: %d", rec.Code)
	}
	cleared, _, _ := store.Memory.GetDay(context.Background(), "2025-11-02")
	if len(cleared.Mood) != 0 {
		t.Fatalf("expected moods cleared, got %#v", cleared.Mood)
	}
}

func TestDeleteNote(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)

	t.Run("absent day is ok", func(t *testing.T) {
		rec := do(t, e, http.MethodDelete, "/api/notes", `{"dayIso":"2025-11-09","noteId":"nope"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if store.saves != 0 {
			t.Fatalf("expected no writes, got %d", store.saves)
		}
	})

	t.Run("removes by id", func(t *testing.T) {
		for _, id := range []string{"a", "b"} {
			body := `{"dayIso":"2025-11-09","note":{"id":"` + id + `","title":"t","type":"text"}}`
			if rec := do(t, e, http.MethodPost, "/api/notes", body); rec.Code != http.StatusOK {
				t.Fatalf("post: %d", rec.Code)
			}
		}
		rec := do(t, e, http.MethodDelete, "/api/notes", `{"dayIso":"2025-11-09","noteId":"a"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		day, _, _ := store.Memory.GetDay(context.Background(), "2025-11-09")
		if len(day.Notes) != 1 || day.Notes[0].ID != "b" {
			t.Fatalf("unexpected notes %#v", day.Notes)
		}
	})

	t.Run("absent note is ok", func(t *testing.T) {
		rec := do(t, e, http.MethodDelete, "/api/notes", `{"dayIso":"2025-11-09","noteId":"zzz"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestGzipBodyAccepted(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"dayIso":"2025-11-01","moods":["mad"]}`))
	_ = zw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/mood", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	bad := httptest.NewRequest(http.MethodPatch, "/api/mood", strings.NewReader("plain"))
	bad.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid gzip, got %d", rec.Code)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	store := newStubStore()
	e := newTestServer(store, nil)
	title := strings.Repeat("x", maxBodySize)
	body := `{"dayIso":"2025-11-01","note":{"id":"a","title":"` + title + `","type":"text"}}`
	rec := do(t, e, http.MethodPost, "/api/notes", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.saves != 0 {
		t.Fatal("oversized body reached the store")
	}
}

func TestHealthz(t *testing.T) {
	if rec := do(t, newTestServer(nil, nil), http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without store, got %d", rec.Code)
	}
	store := newStubStore()
	store.pingErr = errors.New("down")
	if rec := do(t, newTestServer(store, nil), http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(nil, nil), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
