package rotation

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// improvementThreshold is the minimum composite-score gain (strictly greater)
// required before a rotation is recommended.
const improvementThreshold = 0.10

// Engine decides whether a rotation is warranted. Evaluate is a pure,
// idempotent function of its inputs; identical rankings and active set always
// yield the same decision or non-decision.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new rotation decision engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "rotation_engine").Logger(),
	}
}

// Evaluate compares the best-ranked agent against the weakest active agent.
// rankings must be ordered best first (rank 1 at index 0). Returns nil when
// no rotation is warranted.
func (e *Engine) Evaluate(label regime.Label, rankings []ranking.Ranking, active []string, now time.Time) *Decision {
	if len(rankings) < 2 {
		return nil
	}

	activeSet := make(map[string]bool, len(active))
	for _, agent := range active {
		activeSet[agent] = true
	}

	best := rankings[0]
	if activeSet[best.AgentName] {
		// Best agent is already deployed, nothing to gain.
		return nil
	}

	// Scan from worst to best for the weakest deployed agent.
	var candidate *ranking.Ranking
	for i := len(rankings) - 1; i >= 0; i-- {
		if activeSet[rankings[i].AgentName] {
			candidate = &rankings[i]
			break
		}
	}
	if candidate == nil {
		return nil
	}

	improvement := best.CompositeScore - candidate.CompositeScore
	if improvement <= improvementThreshold {
		return nil
	}

	decision := &Decision{
		DecisionID:          newDecisionID(now),
		FromAgent:           candidate.AgentName,
		ToAgent:             best.AgentName,
		Reason:              fmt.Sprintf("Performance improvement: %.2f%%", improvement*100),
		Confidence:          min95(improvement * 2),
		ExpectedImprovement: improvement,
		Regime:              label,
		CreatedAt:           now,
	}

	e.log.Info().
		Str("from", decision.FromAgent).
		Str("to", decision.ToAgent).
		Float64("improvement", improvement).
		Str("regime", string(label)).
		Msg("Rotation recommended")

	return decision
}

func min95(v float64) float64 {
	if v > 0.95 {
		return 0.95
	}
	return v
}
