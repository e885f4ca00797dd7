package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/database"
)

const (
	// Performance records and raw signals only feed trailing-window reads,
	// so anything older is dead weight.
	recordRetention   = 7 * 24 * time.Hour
	snapshotRetention = 30 * 24 * time.Hour
)

// RecordPruner deletes rows older than a cutoff and reports how many went.
type RecordPruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// MaintenanceJob prunes aged evaluation history and checkpoints the WAL.
// Rotation decisions are an append-only audit trail and are never pruned.
type MaintenanceJob struct {
	db        *database.DB
	signals   RecordPruner
	records   RecordPruner
	snapshots RecordPruner
	log       zerolog.Logger
}

// NewMaintenanceJob creates the nightly maintenance job
func NewMaintenanceJob(db *database.DB, signals, records, snapshots RecordPruner, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:        db,
		signals:   signals,
		records:   records,
		snapshots: snapshots,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run prunes retention windows and forces a WAL checkpoint
func (j *MaintenanceJob) Run() error {
	now := time.Now().UTC()

	pruned := map[string]int64{}
	for table, p := range map[string]struct {
		pruner RecordPruner
		cutoff time.Time
	}{
		"agent_signals":     {j.signals, now.Add(-recordRetention)},
		"agent_performance": {j.records, now.Add(-recordRetention)},
		"regime_snapshots":  {j.snapshots, now.Add(-snapshotRetention)},
	} {
		n, err := p.pruner.PruneBefore(p.cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune %s: %w", table, err)
		}
		pruned[table] = n
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		return fmt.Errorf("maintenance checkpoint failed: %w", err)
	}

	j.log.Info().
		Int64("signals", pruned["agent_signals"]).
		Int64("records", pruned["agent_performance"]).
		Int64("snapshots", pruned["regime_snapshots"]).
		Msg("Maintenance complete")

	return nil
}
