package summary

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for the meta-evaluation summary API
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new summary handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "summary").Logger(),
	}
}

// HandleGetSummary returns the consolidated meta-evaluation summary
// GET /api/meta/summary
func (h *Handlers) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	// Summary assembly never fails; degraded sections carry defaults
	h.writeJSON(w, h.service.Summary())
}

func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
