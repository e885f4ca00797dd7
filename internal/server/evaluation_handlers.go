package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/evaluation"
)

// EvaluationHandlers controls the evaluation orchestrator over HTTP.
type EvaluationHandlers struct {
	orchestrator *evaluation.Orchestrator
	log          zerolog.Logger
}

// NewEvaluationHandlers creates a new evaluation handlers instance
func NewEvaluationHandlers(orchestrator *evaluation.Orchestrator, log zerolog.Logger) *EvaluationHandlers {
	return &EvaluationHandlers{
		orchestrator: orchestrator,
		log:          log.With().Str("handler", "evaluation").Logger(),
	}
}

// HandleStatus reports whether the periodic cycles are running
// GET /api/meta/evaluation/status
func (h *EvaluationHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{"running": h.orchestrator.Running()})
}

// HandleStart starts the periodic evaluation cycles
// POST /api/meta/evaluation/start
func (h *EvaluationHandlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Start()
	h.writeJSON(w, map[string]interface{}{"running": true})
}

// HandleStop stops the periodic evaluation cycles and waits for in-flight
// iterations to finish
// POST /api/meta/evaluation/stop
func (h *EvaluationHandlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Stop()
	h.writeJSON(w, map[string]interface{}{"running": false})
}

// HandleRunCycle triggers a single named cycle iteration
// POST /api/meta/evaluation/cycles/{name}
func (h *EvaluationHandlers) HandleRunCycle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.orchestrator.RunCycleOnce(name); err != nil {
		h.log.Error().Err(err).Str("cycle", name).Msg("Cycle run failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]interface{}{"cycle": name, "status": "completed"})
}

func (h *EvaluationHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
