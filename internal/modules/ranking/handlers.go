package ranking

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// Handlers contains HTTP handlers for the ranking API
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new ranking handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "ranking").Logger(),
	}
}

// HandleGetByRegime returns the current ranking set for a regime, best first
// GET /api/meta/rankings/{regime}?limit=N
func (h *Handlers) HandleGetByRegime(w http.ResponseWriter, r *http.Request) {
	label := regime.Label(chi.URLParam(r, "regime"))
	if !label.Valid() {
		http.Error(w, "Unknown regime", http.StatusBadRequest)
		return
	}

	limit := 100
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	rankings, err := h.repo.GetByRegime(label, limit)
	if err != nil {
		h.log.Error().Err(err).Str("regime", string(label)).Msg("Failed to get rankings")
		http.Error(w, "Failed to get rankings", http.StatusInternalServerError)
		return
	}

	if rankings == nil {
		rankings = []Ranking{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rankings); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
