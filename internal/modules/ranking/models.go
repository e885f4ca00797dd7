package ranking

import (
	"time"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// Ranking is one agent's position within a regime-scoped ranking set.
// Each ranking cycle produces a full replacement set per regime.
type Ranking struct {
	AgentName      string       `json:"agent_name"`
	Regime         regime.Label `json:"regime"`
	Rank           int          `json:"rank"` // 1 = best
	CompositeScore float64      `json:"composite_score"`
	Accuracy       float64      `json:"accuracy"`
	SharpeRatio    float64      `json:"sharpe_ratio"`
	TotalReturn    float64      `json:"total_return"`
	MaxDrawdown    float64      `json:"max_drawdown"`
	WinRate        float64      `json:"win_rate"`
	Confidence     float64      `json:"confidence"`
	ResponseTime   float64      `json:"response_time"`
	CreatedAt      time.Time    `json:"timestamp"`
}
