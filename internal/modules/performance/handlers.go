package performance

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handlers contains HTTP handlers for signal ingest
type Handlers struct {
	signals *SignalRepository
	log     zerolog.Logger
}

// NewHandlers creates a new performance handlers instance
func NewHandlers(signals *SignalRepository, log zerolog.Logger) *Handlers {
	return &Handlers{
		signals: signals,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

// signalRequest is the ingest payload for one agent prediction.
type signalRequest struct {
	AgentName string `json:"agent_name"`
	Prediction
}

// HandlePostSignal records a prediction signal for an agent
// POST /api/meta/signals
func (h *Handlers) HandlePostSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AgentName == "" {
		http.Error(w, "agent_name is required", http.StatusBadRequest)
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		http.Error(w, "confidence must be in [0, 1]", http.StatusBadRequest)
		return
	}

	if err := h.signals.Insert(req.AgentName, req.Prediction); err != nil {
		h.log.Error().Err(err).Str("agent", req.AgentName).Msg("Failed to store signal")
		http.Error(w, "Failed to store signal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
}
