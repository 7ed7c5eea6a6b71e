// Package httpapi exposes the read side of the bot over HTTP for clinic staff tooling.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ivf_stage_bot/internal/app"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// AdminTokenHeader carries the shared secret for admin routes.
const AdminTokenHeader = "X-Admin-Token"

// StageReader is implemented by *app.StageService.
type StageReader interface {
	CurrentStage(ctx context.Context, telegramID int64) (*app.StageView, error)
	Timeline(ctx context.Context, telegramID int64) (*app.TimelineView, error)
}

// Config holds runtime options for the HTTP server.
type Config struct {
	Address    string
	AdminToken string // required by every /v1 route; empty disables them
}

type handlers struct {
	stages    StageReader
	reference app.ReferenceReloader
	logger    *logrus.Entry
}

// New constructs the HTTP server.
func New(cfg Config, stages StageReader, reference app.ReferenceReloader, logger *logrus.Entry) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(cfg, stages, reference, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the chi router with its middleware stack.
func NewRouter(cfg Config, stages StageReader, reference app.ReferenceReloader, logger *logrus.Entry) http.Handler {
	h := &handlers{stages: stages, reference: reference, logger: logger}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(requestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Patient data and admin actions share the token; without one only /healthz is served.
	if cfg.AdminToken == "" {
		logger.Warn("HTTP_ADMIN_TOKEN is empty; /v1 routes are disabled")
		return router
	}
	router.Route("/v1", func(r chi.Router) {
		r.Use(requireAdminToken(cfg.AdminToken))
		r.Get("/patients/{telegramID}/stage", h.getStage)
		r.Get("/patients/{telegramID}/timeline", h.getTimeline)
		r.Post("/admin/reference/refresh", h.refreshReference)
	})
	return router
}

type nextMilestone struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	When  string `json:"when"`
}

type stageResponse struct {
	CycleType string         `json:"cycle_type"`
	StartDate string         `json:"start_date"`
	CycleDay  int            `json:"cycle_day"`
	Pending   bool           `json:"pending"`
	Result    *stage.Result  `json:"result,omitempty"`
	Next      *nextMilestone `json:"next,omitempty"`
}

type timelineResponse struct {
	CycleType string             `json:"cycle_type"`
	CycleDay  int                `json:"cycle_day"`
	Items     []app.TimelineItem `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) getStage(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.stages.CurrentStage(r.Context(), telegramID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := stageResponse{
		CycleType: string(view.Cycle.Type),
		StartDate: view.Cycle.StartDate.Format(time.DateOnly),
		CycleDay:  view.CycleDay,
		Pending:   view.Result == nil,
		Result:    view.Result,
	}
	if view.Next != nil {
		resp.Next = &nextMilestone{
			Type:  view.Next.Type,
			Title: milestone.FormatTitle(view.Next.Type),
			When:  view.NextWhen,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getTimeline(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.stages.Timeline(r.Context(), telegramID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineResponse{
		CycleType: string(view.Cycle.Type),
		CycleDay:  view.CycleDay,
		Items:     view.Items,
	})
}

func (h *handlers) refreshReference(w http.ResponseWriter, r *http.Request) {
	cat, err := h.reference.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Reference refresh over HTTP failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "reference refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": cat.Len()})
}

func telegramIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "telegramID must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNotRegistered):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "patient not registered"})
	case errors.Is(err, app.ErrNoActiveCycle):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no active cycle"})
	default:
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid admin token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
