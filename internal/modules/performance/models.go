package performance

import (
	"time"

	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// Prediction is a single directional call recorded for an agent.
type Prediction struct {
	Confidence         float64   `json:"confidence"`
	PredictedDirection string    `json:"predicted_direction"`
	ActualDirection    string    `json:"actual_direction"`
	CreatedAt          time.Time `json:"timestamp"`
}

// Correct reports whether the predicted direction matched the realized one.
func (p Prediction) Correct() bool {
	return p.PredictedDirection == p.ActualDirection
}

// Record is one agent's normalized performance for one evaluation cycle.
// Immutable once created; one row per (agent, cycle).
type Record struct {
	AgentName    string       `json:"agent_name"`
	Accuracy     float64      `json:"accuracy"`
	SharpeRatio  float64      `json:"sharpe_ratio"`
	TotalReturn  float64      `json:"total_return"`
	MaxDrawdown  float64      `json:"max_drawdown"`
	WinRate      float64      `json:"win_rate"`
	Confidence   float64      `json:"confidence"`
	ResponseTime float64      `json:"response_time"`
	Regime       regime.Label `json:"regime"`
	CreatedAt    time.Time    `json:"timestamp"`
}

// AggregateStats summarizes performance records over a trailing window.
type AggregateStats struct {
	TotalAgents     int     `json:"total_agents"`
	AvgAccuracy     float64 `json:"avg_accuracy"`
	AvgSharpeRatio  float64 `json:"avg_sharpe_ratio"`
	AvgTotalReturn  float64 `json:"avg_total_return"`
	AvgResponseTime float64 `json:"avg_response_time"`
}
