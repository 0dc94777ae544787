package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"sofia-api/calendar"
	"sofia-api/domain"
)

const (
	healthTimeout  = 2 * time.Second
	reasonNotSetUp = "persistence not configured"
)

// Register wires up all API routes on the provided Echo instance. store and
// auth may be nil: without a store reads serve generated days and writes
// answer 501, without auth the API is open.
func Register(e *echo.Echo, store Storage, auth Authenticator, logger *log.Logger) {
	mws := []echo.MiddlewareFunc{GzipRequestMiddleware()}
	if auth != nil {
		mws = append(mws, RequireAuth(auth, logger))
	}
	g := e.Group("/api", mws...)
	g.GET("/days", getDays(store, logger))
	g.PATCH("/mood", patchMood(store, logger))
	g.POST("/notes", postNote(store, logger))
	g.DELETE("/notes", deleteNote(store, logger))

	e.GET("/healthz", healthz(store))
	e.GET("/metrics", echoprometheus.NewHandler())
}

// instrumented runs h inside a request span and logs its metrics afterwards.
func instrumented(route string, logger *log.Logger, h func(echo.Context, *requestMetrics) error) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, c.Request().Method, route)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()
		return h(c, metrics)
	}
}

func healthz(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		if store == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return c.String(http.StatusServiceUnavailable, err.Error())
		}
		return c.NoContent(http.StatusOK)
	}
}

func getDays(store Storage, logger *log.Logger) echo.HandlerFunc {
	return instrumented("/api/days", logger, func(c echo.Context, metrics *requestMetrics) error {
		ref := time.Now()
		if month := strings.TrimSpace(c.QueryParam("month")); month != "" {
			parsed, err := calendar.ParseMonthKey(month)
			if err != nil {
				metrics.SetErrorStage("invalid_month")
				return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			}
			ref = parsed
		}
		month := calendar.MonthKey(ref)
		metrics.SetMonth(month)
		grid := calendar.Generate(ref)

		if store == nil {
			metrics.SetSource(sourceGenerated)
			metrics.SetDaysReturned(len(grid), 0)
			return encode(c, metrics, daysResponse{Source: sourceGenerated, Days: grid})
		}

		fetchStart := time.Now()
		records, err := store.FetchMonth(c.Request().Context(), month)
		metrics.ObserveStore(time.Since(fetchStart))
		if err != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}

		days := calendar.Merge(grid, records)
		metrics.SetSource(store.Source())
		metrics.SetDaysReturned(len(days), len(records))
		return encode(c, metrics, daysResponse{Source: store.Source(), Days: days})
	})
}

func patchMood(store Storage, logger *log.Logger) echo.HandlerFunc {
	return instrumented("/api/mood", logger, func(c echo.Context, metrics *requestMetrics) error {
		var req moodRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return badRequest(c, err)
		}
		metrics.SetDayISO(req.DayISO)
		if _, err := calendar.ParseISODate(req.DayISO); err != nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, err)
		}
		moods, err := domain.CanonicalMoods(req.Moods)
		if err != nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, err)
		}
		if store == nil {
			metrics.SetErrorStage("not_configured")
			return notConfigured(c)
		}

		start := time.Now()
		err = store.SaveMoods(c.Request().Context(), req.DayISO, moods)
		metrics.ObserveStore(time.Since(start))
		if err != nil {
			return storeFailure(c, metrics, err)
		}
		return c.JSON(http.StatusOK, statusResponse{OK: true})
	})
}

func postNote(store Storage, logger *log.Logger) echo.HandlerFunc {
	return instrumented("/api/notes", logger, func(c echo.Context, metrics *requestMetrics) error {
		var req noteRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return badRequest(c, err)
		}
		metrics.SetDayISO(req.DayISO)
		if _, err := calendar.ParseISODate(req.DayISO); err != nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, err)
		}
		if req.Note == nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, domain.ErrInvalidPayload)
		}
		note := *req.Note
		note.Title = strings.TrimSpace(note.Title)
		if err := note.Validate(); err != nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, err)
		}
		if store == nil {
			metrics.SetErrorStage("not_configured")
			return notConfigured(c)
		}

		ctx := c.Request().Context()
		start := time.Now()
		defer func() { metrics.ObserveStore(time.Since(start)) }()
		rec, _, err := store.GetDay(ctx, req.DayISO)
		if err != nil {
			return storeFailure(c, metrics, err)
		}
		if err := store.SaveNotes(ctx, req.DayISO, domain.UpsertNote(rec.Notes, note)); err != nil {
			return storeFailure(c, metrics, err)
		}
		return c.JSON(http.StatusOK, statusResponse{OK: true})
	})
}

func deleteNote(store Storage, logger *log.Logger) echo.HandlerFunc {
	return instrumented("/api/notes", logger, func(c echo.Context, metrics *requestMetrics) error {
		var req deleteNoteRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return badRequest(c, err)
		}
		metrics.SetDayISO(req.DayISO)
		if _, err := calendar.ParseISODate(req.DayISO); err != nil {
			metrics.SetErrorStage("validate")
			return badRequest(c, err)
		}
		if strings.TrimSpace(req.NoteID) == "" {
			metrics.SetErrorStage("validate")
			return badRequest(c, domain.ErrMissingNoteID)
		}
		if store == nil {
			metrics.SetErrorStage("not_configured")
			return notConfigured(c)
		}

		ctx := c.Request().Context()
		start := time.Now()
		defer func() { metrics.ObserveStore(time.Since(start)) }()
		rec, found, err := store.GetDay(ctx, req.DayISO)
		if err != nil {
			return storeFailure(c, metrics, err)
		}
		if !found {
			return c.JSON(http.StatusOK, statusResponse{OK: true})
		}
		notes, removed := domain.RemoveNote(rec.Notes, req.NoteID)
		if !removed {
			return c.JSON(http.StatusOK, statusResponse{OK: true})
		}
		if err := store.SaveNotes(ctx, req.DayISO, notes); err != nil {
			return storeFailure(c, metrics, err)
		}
		return c.JSON(http.StatusOK, statusResponse{OK: true})
	})
}

// decodeBody reads at most maxBodySize bytes of JSON into v.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	if err := sonic.ConfigStd.NewDecoder(lr).Decode(v); err != nil {
		if errors.Is(err, domain.ErrUnknownNoteType) || errors.Is(err, domain.ErrUnknownTaskStatus) {
			return err
		}
		return domain.ErrInvalidPayload
	}
	return nil
}

func encode(c echo.Context, metrics *requestMetrics, body any) error {
	start := time.Now()
	err := c.JSON(http.StatusOK, body)
	metrics.ObserveEncode(time.Since(start))
	if err != nil {
		metrics.SetErrorStage("encode_response")
	}
	return err
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func notConfigured(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, statusResponse{OK: false, Reason: reasonNotSetUp})
}

func storeFailure(c echo.Context, metrics *requestMetrics, err error) error {
	metrics.SetErrorStage("storage")
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
