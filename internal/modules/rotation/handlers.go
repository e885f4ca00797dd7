package rotation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the rotation decision API
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new rotation handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "rotation").Logger(),
	}
}

// HandleGetRecent returns recent rotation decisions, newest first
// GET /api/meta/rotations?limit=N
func (h *Handlers) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	decisions, err := h.repo.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get rotation decisions")
		http.Error(w, "Failed to get rotation decisions", http.StatusInternalServerError)
		return
	}

	if decisions == nil {
		decisions = []Decision{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(decisions); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
