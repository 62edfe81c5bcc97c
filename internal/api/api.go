// Package api exposes the draw history, statistics and refresh trigger over
// HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/quinimind"
	"github.com/hazyhaar/quinimind/analysis"
	"github.com/hazyhaar/quinimind/draw"
	"github.com/hazyhaar/quinimind/internal/scrape"
	"github.com/hazyhaar/quinimind/internal/store"
)

// RefreshTimeout bounds a refresh triggered through /update. The run is
// detached from the request so that a client disconnect does not abort it.
const RefreshTimeout = 10 * time.Minute

// Service is the query and refresh surface served by the API.
// *quinimind.Service satisfies it.
type Service interface {
	Refresh(ctx context.Context) (*scrape.Report, error)
	Latest(ctx context.Context) (*draw.Snapshot, error)
	History(ctx context.Context, limit int) ([]store.HistoryEntry, error)
	Heatmap(ctx context.Context, m draw.Modality) ([]analysis.HeatmapRow, error)
	Hot(ctx context.Context, m draw.Modality, lastN int) ([]int, error)
	Cold(ctx context.Context, m draw.Modality) ([]int, error)
	Predict(ctx context.Context, m draw.Modality) ([]int, error)
	Runs(ctx context.Context, limit int) ([]*store.Run, error)
}

// Handler serves the consumer API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// New builds the router.
func New(svc Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(HeadToGet)
	r.Use(SecurityHeaders)
	r.Use(RequestLog(logger))

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Get("/update", h.update)
	r.Post("/update", h.update)
	r.Get("/latest", h.latest)
	r.Get("/history", h.history)
	r.Get("/runs", h.runs)
	r.Route("/stats", func(r chi.Router) {
		r.Get("/heatmap", h.heatmap)
		r.Get("/hot", h.hot)
		r.Get("/cold", h.cold)
	})
	r.Get("/predict", h.predict)
	return r
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "online", "system": "QuiniMind"})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// update runs a refresh synchronously.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), RefreshTimeout)
	defer cancel()

	rep, err := h.svc.Refresh(ctx)
	switch {
	case errors.Is(err, quinimind.ErrRefreshInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"detail": err.Error()})
	case err != nil:
		h.logger.Error("api: refresh failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error(), "report": rep})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "Database updated successfully",
			"report":  rep,
		})
	}
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Latest(r.Context())
	if err != nil {
		h.internal(w, "latest", err)
		return
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No data found"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		h.internal(w, "history", err)
		return
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) runs(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.Runs(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		h.internal(w, "runs", err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	m, ok := modality(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Heatmap(r.Context(), m)
	if err != nil {
		h.internal(w, "heatmap", err)
		return
	}
	if rows == nil {
		rows = []analysis.HeatmapRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) hot(w http.ResponseWriter, r *http.Request) {
	m, ok := modality(w, r)
	if !ok {
		return
	}
	nums, err := h.svc.Hot(r.Context(), m, queryInt(r, "last_n", 0))
	if err != nil {
		h.internal(w, "hot", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(nums))
}

func (h *Handler) cold(w http.ResponseWriter, r *http.Request) {
	m, ok := modality(w, r)
	if !ok {
		return
	}
	nums, err := h.svc.Cold(r.Context(), m)
	if err != nil {
		h.internal(w, "cold", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(nums))
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	m, ok := modality(w, r)
	if !ok {
		return
	}
	nums, err := h.svc.Predict(r.Context(), m)
	if err != nil {
		h.internal(w, "predict", err)
		return
	}
	writeJSON(w, http.StatusOK, nums)
}

func (h *Handler) internal(w http.ResponseWriter, op string, err error) {
	h.logger.Error("api: "+op, "error", err)
	writeError(w, http.StatusInternalServerError, err)
}

// modality reads the "modalidad" query parameter, defaulting to Traditional.
// It writes a 400 and returns false for an unknown modality.
func modality(w http.ResponseWriter, r *http.Request) (draw.Modality, bool) {
	q := r.URL.Query().Get("modalidad")
	if q == "" {
		return draw.Traditional, true
	}
	m, err := draw.ParseModality(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return m, true
}

func orEmpty(nums []int) []int {
	if nums == nil {
		return []int{}
	}
	return nums
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
