package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/evaluation"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log          zerolog.Logger
	dataDir      string
	startupTime  time.Time
	db           *database.DB
	orchestrator *evaluation.Orchestrator
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, db *database.DB, orchestrator *evaluation.Orchestrator) *SystemHandlers {
	return &SystemHandlers{
		log:          log.With().Str("component", "system_handlers").Logger(),
		dataDir:      dataDir,
		startupTime:  time.Now(),
		db:           db,
		orchestrator: orchestrator,
	}
}

// HandleHealth is the liveness probe
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// HandleSystemHealth returns process and database health
// GET /api/system/health
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.QuickCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database quick check failed")
		dbStatus = "degraded"
	}

	h.writeJSON(w, map[string]interface{}{
		"status":             dbStatus,
		"uptime_seconds":     int64(time.Since(h.startupTime).Seconds()),
		"cpu_percent":        cpuPercent,
		"memory_percent":     memPercent,
		"database":           dbStatus,
		"evaluation_running": h.orchestrator.Running(),
	})
}

// HandleDatabaseStats returns on-disk database size and integrity status
// GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	integrity := "ok"
	if err := h.db.HealthCheck(ctx); err != nil {
		integrity = err.Error()
	}

	var sizeBytes int64
	if info, err := os.Stat(h.db.Path()); err == nil {
		sizeBytes = info.Size()
	}

	h.writeJSON(w, map[string]interface{}{
		"size_bytes": sizeBytes,
		"integrity":  integrity,
	})
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms CPU sampling interval to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
