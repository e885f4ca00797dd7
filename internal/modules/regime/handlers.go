package regime

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the regime API
type Handlers struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandlers creates a new regime handlers instance
func NewHandlers(service *Service, repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "regime").Logger(),
	}
}

// HandleGetCurrent returns the latest regime snapshot
// GET /api/meta/regime
func (h *Handlers) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.service.Current())
}

// HandleGetHistory returns recent regime snapshots, newest first
// GET /api/meta/regime/history?limit=N
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.repo.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get regime history")
		http.Error(w, "Failed to get regime history", http.StatusInternalServerError)
		return
	}

	if history == nil {
		history = []Snapshot{}
	}
	h.writeJSON(w, history)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
