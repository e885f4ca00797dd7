package rotation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// Decision recommends swapping one actively deployed agent for a
// better-performing one. Decisions are append-only and never mutated;
// applying one to the active set is a separate, manual operation.
type Decision struct {
	DecisionID          string       `json:"decision_id"`
	FromAgent           string       `json:"from_agent"`
	ToAgent             string       `json:"to_agent"`
	Reason              string       `json:"reason"`
	Confidence          float64      `json:"confidence"`
	ExpectedImprovement float64      `json:"expected_improvement"`
	Regime              regime.Label `json:"regime"`
	CreatedAt           time.Time    `json:"timestamp"`
}

// newDecisionID builds a unique, time-derived decision identifier.
// The UUID suffix guards against collisions within one second.
func newDecisionID(now time.Time) string {
	return fmt.Sprintf("rotation_%s_%s", now.Format("20060102_150405"), uuid.New().String()[:8])
}
