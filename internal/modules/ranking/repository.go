package ranking

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// rankingColumns is the column list for agent_rankings.
// Order must match the scan in GetByRegime.
const rankingColumns = `agent_name, regime, rank, composite_score, accuracy, sharpe_ratio, total_return, max_drawdown, win_rate, confidence, response_time, created_at`

// Repository handles ranking persistence. Rankings for a regime are replaced
// wholesale each cycle: the delete and inserts run in one transaction so
// readers never observe a partial set.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new ranking repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ranking").Logger(),
	}
}

// ReplaceForRegime atomically replaces the ranking set for one regime.
func (r *Repository) ReplaceForRegime(label regime.Label, rankings []Ranking) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM agent_rankings WHERE regime = ?`, string(label)); err != nil {
			return fmt.Errorf("failed to clear rankings for regime %s: %w", label, err)
		}

		query := `
			INSERT INTO agent_rankings
			(` + rankingColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		for _, ranking := range rankings {
			if _, err := tx.Exec(query,
				ranking.AgentName,
				string(label),
				ranking.Rank,
				ranking.CompositeScore,
				ranking.Accuracy,
				ranking.SharpeRatio,
				ranking.TotalReturn,
				ranking.MaxDrawdown,
				ranking.WinRate,
				ranking.Confidence,
				ranking.ResponseTime,
				ranking.CreatedAt.Unix(),
			); err != nil {
				return fmt.Errorf("failed to insert ranking for %s: %w", ranking.AgentName, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().
		Str("regime", string(label)).
		Int("entries", len(rankings)).
		Msg("Rankings replaced")

	return nil
}

// GetByRegime returns the current ranking set for a regime, best first.
func (r *Repository) GetByRegime(label regime.Label, limit int) ([]Ranking, error) {
	query := `
		SELECT ` + rankingColumns + `
		FROM agent_rankings
		WHERE regime = ?
		ORDER BY rank ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, string(label), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings for regime %s: %w", label, err)
	}
	defer rows.Close()

	var rankings []Ranking
	for rows.Next() {
		var ranking Ranking
		var regimeStr string
		var createdAt int64
		if err := rows.Scan(
			&ranking.AgentName,
			&regimeStr,
			&ranking.Rank,
			&ranking.CompositeScore,
			&ranking.Accuracy,
			&ranking.SharpeRatio,
			&ranking.TotalReturn,
			&ranking.MaxDrawdown,
			&ranking.WinRate,
			&ranking.Confidence,
			&ranking.ResponseTime,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		ranking.Regime = regime.Label(regimeStr)
		ranking.CreatedAt = time.Unix(createdAt, 0).UTC()
		rankings = append(rankings, ranking)
	}

	return rankings, rows.Err()
}
