package performance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// recordColumns is the column list for agent_performance.
// Order must match the scan in GetByRegimeSince.
const recordColumns = `agent_name, accuracy, sharpe_ratio, total_return, max_drawdown, win_rate, confidence, response_time, regime, created_at`

// Repository handles performance record persistence (insert-only).
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new performance record repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "performance").Logger(),
	}
}

// Insert appends one performance record. Records are never updated.
func (r *Repository) Insert(record Record) error {
	query := `
		INSERT INTO agent_performance
		(` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.AgentName,
		record.Accuracy,
		record.SharpeRatio,
		record.TotalReturn,
		record.MaxDrawdown,
		record.WinRate,
		record.Confidence,
		record.ResponseTime,
		string(record.Regime),
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance record: %w", err)
	}

	return nil
}

// GetByRegimeSince returns performance records for a regime newer than the
// cutoff, newest first.
func (r *Repository) GetByRegimeSince(label regime.Label, since time.Time) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM agent_performance
		WHERE regime = ? AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, string(label), since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get performance records for regime %s: %w", label, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var regimeStr string
		var createdAt int64
		if err := rows.Scan(
			&record.AgentName,
			&record.Accuracy,
			&record.SharpeRatio,
			&record.TotalReturn,
			&record.MaxDrawdown,
			&record.WinRate,
			&record.Confidence,
			&record.ResponseTime,
			&regimeStr,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance record: %w", err)
		}
		record.Regime = regime.Label(regimeStr)
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, record)
	}

	return records, rows.Err()
}

// AggregateSince summarizes all records newer than the cutoff.
// An empty window yields zero-valued stats, not an error.
func (r *Repository) AggregateSince(since time.Time) (AggregateStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT agent_name),
			COALESCE(AVG(accuracy), 0),
			COALESCE(AVG(sharpe_ratio), 0),
			COALESCE(AVG(total_return), 0),
			COALESCE(AVG(response_time), 0)
		FROM agent_performance
		WHERE created_at >= ?
	`

	var stats AggregateStats
	err := r.db.QueryRow(query, since.Unix()).Scan(
		&stats.TotalAgents,
		&stats.AvgAccuracy,
		&stats.AvgSharpeRatio,
		&stats.AvgTotalReturn,
		&stats.AvgResponseTime,
	)
	if err != nil {
		return AggregateStats{}, fmt.Errorf("failed to aggregate performance stats: %w", err)
	}

	return stats, nil
}

// PruneBefore deletes records older than the cutoff. Used by retention maintenance.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM agent_performance WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune performance records: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}
