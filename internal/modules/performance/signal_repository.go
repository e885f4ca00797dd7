package performance

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SignalRepository handles agent prediction signals.
// Signals are written by external agents through the ingest endpoint and read
// here by the scorer.
type SignalRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db *sql.DB, log zerolog.Logger) *SignalRepository {
	return &SignalRepository{
		db:  db,
		log: log.With().Str("repo", "signal").Logger(),
	}
}

// Insert records one prediction signal for an agent.
func (r *SignalRepository) Insert(agent string, p Prediction) error {
	if agent == "" {
		return fmt.Errorf("agent name is required")
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO agent_signals
		(agent_name, confidence, predicted_direction, actual_direction, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		strings.TrimSpace(agent),
		p.Confidence,
		p.PredictedDirection,
		p.ActualDirection,
		createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert agent signal: %w", err)
	}

	return nil
}

// PruneBefore deletes signals older than the cutoff. Returns rows deleted.
func (r *SignalRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM agent_signals WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune agent signals: %w", err)
	}
	return result.RowsAffected()
}

// GetRecent returns the agent's predictions within the trailing window,
// newest first, capped at limit.
func (r *SignalRepository) GetRecent(agent string, window time.Duration, limit int) ([]Prediction, error) {
	since := time.Now().Add(-window).Unix()

	query := `
		SELECT confidence, predicted_direction, actual_direction, created_at
		FROM agent_signals
		WHERE agent_name = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, agent, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent predictions for %s: %w", agent, err)
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var p Prediction
		var createdAt int64
		if err := rows.Scan(&p.Confidence, &p.PredictedDirection, &p.ActualDirection, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}
