// Package client holds the calendar state container used by front ends and
// the HTTP gateway it syncs through.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"sofia-api/domain"
)

// Gateway is the remote persistence boundary a Session reads from and
// syncs to.
type Gateway interface {
	FetchDays(ctx context.Context, month string) (DaysPage, error)
	SaveNote(ctx context.Context, iso string, note domain.Note) error
	DeleteNote(ctx context.Context, iso, noteID string) error
	SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error
}

// DaysPage is the GET /api/days payload.
type DaysPage struct {
	Source string       `json:"source"`
	Days   []domain.Day `json:"days"`
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("api: %d %s", e.Code, e.Message)
}

// HTTPGateway talks JSON to the sofia API.
type HTTPGateway struct {
	BaseURL string
	Bearer  string
	HTTP    *http.Client
}

// NewHTTPGateway creates a gateway for baseURL, sending bearer when non-empty.
func NewHTTPGateway(baseURL, bearer string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Bearer:  bearer,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *HTTPGateway) FetchDays(ctx context.Context, month string) (DaysPage, error) {
	var page DaysPage
	err := g.do(ctx, http.MethodGet, "/api/days?month="+url.QueryEscape(month), nil, &page)
	if err != nil {
		return DaysPage{}, err
	}
	return page, nil
}

func (g *HTTPGateway) SaveNote(ctx context.Context, iso string, note domain.Note) error {
	body := struct {
		DayISO string      `json:"dayIso"`
		Note   domain.Note `json:"note"`
	}{iso, note}
	return g.do(ctx, http.MethodPost, "/api/notes", body, nil)
}

func (g *HTTPGateway) DeleteNote(ctx context.Context, iso, noteID string) error {
	body := struct {
		DayISO string `json:"dayIso"`
		NoteID string `json:"noteId"`
	}{iso, noteID}
	return g.do(ctx, http.MethodDelete, "/api/notes", body, nil)
}

func (g *HTTPGateway) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	if moods == nil {
		moods = domain.MoodSet{}
	}
	body := struct {
		DayISO string         `json:"dayIso"`
		Moods  domain.MoodSet `json:"moods"`
	}{iso, moods}
	return g.do(ctx, http.MethodPatch, "/api/mood", body, nil)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if g.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+g.Bearer)
	}

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, out)
}

func statusError(code int, data []byte) error {
	var payload struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	msg := strings.TrimSpace(string(data))
	if err := sonic.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Reason != "":
			msg = payload.Reason
		}
	}
	return &StatusError{Code: code, Message: msg}
}
