package rotation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// decisionColumns is the column list for rotation_decisions.
// Order must match the scan in Recent.
const decisionColumns = `decision_id, from_agent, to_agent, reason, confidence, expected_improvement, regime, created_at`

// Repository handles the append-only rotation decision log.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new rotation decision repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "rotation").Logger(),
	}
}

// Insert appends a rotation decision to the log.
func (r *Repository) Insert(decision Decision) error {
	query := `
		INSERT INTO rotation_decisions
		(` + decisionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		decision.DecisionID,
		decision.FromAgent,
		decision.ToAgent,
		decision.Reason,
		decision.Confidence,
		decision.ExpectedImprovement,
		string(decision.Regime),
		decision.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rotation decision: %w", err)
	}

	r.log.Info().
		Str("decision_id", decision.DecisionID).
		Str("from", decision.FromAgent).
		Str("to", decision.ToAgent).
		Msg("Rotation decision stored")

	return nil
}

// Recent returns the latest decisions, newest first.
func (r *Repository) Recent(limit int) ([]Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM rotation_decisions
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent rotation decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var decision Decision
		var regimeStr string
		var createdAt int64
		if err := rows.Scan(
			&decision.DecisionID,
			&decision.FromAgent,
			&decision.ToAgent,
			&decision.Reason,
			&decision.Confidence,
			&decision.ExpectedImprovement,
			&regimeStr,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rotation decision: %w", err)
		}
		decision.Regime = regime.Label(regimeStr)
		decision.CreatedAt = time.Unix(createdAt, 0).UTC()
		decisions = append(decisions, decision)
	}

	return decisions, rows.Err()
}
