package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

const (
	defaultLimit    = 20
	maxLimit        = 200
	defaultLookback = 30 * 24 * time.Hour
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type opportunityView struct {
	Source       domain.Source   `json:"source"`
	MarketID     string          `json:"market_id"`
	Title        string          `json:"title"`
	Category     string          `json:"category,omitempty"`
	YesPrice     int             `json:"yes_price"`
	Score        float64         `json:"score"`
	Position     domain.Position `json:"position"`
	Delta24h     float64         `json:"delta_24h"`
	HoursToClose float64         `json:"hours_to_close"`
	Cultural     float64         `json:"cultural_relevance"`
	Reasoning    []string        `json:"reasoning"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// getPicks lista picks. Query params: since (RFC3339), limit.
func (s *Server) getPicks(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	since := now.Add(-defaultLookback)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be RFC3339", err)
			return
		}
		since = t
	}
	limit := parseLimit(r)

	picks, err := s.storage.GetPicks(r.Context(), since, now, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query picks", err)
		return
	}
	if picks == nil {
		picks = []domain.PickRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"picks": picks, "count": len(picks)})
}

func (s *Server) getLatestPick(w http.ResponseWriter, r *http.Request) {
	p, err := s.storage.LatestPick(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no picks yet", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query latest pick", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.storage.GetRuns(r.Context(), parseLimit(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query runs", err)
		return
	}
	if runs == nil {
		runs = []domain.RunSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// getOpportunities devuelve el ranking del último ciclo en memoria.
func (s *Server) getOpportunities(w http.ResponseWriter, r *http.Request) {
	if s.opps == nil {
		respondError(w, http.StatusServiceUnavailable, "scanner not running", nil)
		return
	}
	opps, at, ok := s.opps.LatestOpportunities()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "no completed cycle yet", nil)
		return
	}

	limit := parseLimit(r)
	if len(opps) > limit {
		opps = opps[:limit]
	}
	views := make([]opportunityView, len(opps))
	for i, o := range opps {
		views[i] = opportunityView{
			Source:       o.Market.Source,
			MarketID:     o.Market.ID,
			Title:        o.Market.Title,
			Category:     o.Market.Category,
			YesPrice:     o.Market.YesPrice,
			Score:        o.Score,
			Position:     o.RecommendedPosition,
			Delta24h:     o.Delta24h,
			HoursToClose: o.TimeToClose,
			Cultural:     o.Signals.CulturalRelevance,
			Reasoning:    o.Reasoning,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scanned_at":    at,
		"opportunities": views,
		"count":         len(views),
	})
}

func parseLimit(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("error encoding response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Warn("api error", "message", message, "err", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
