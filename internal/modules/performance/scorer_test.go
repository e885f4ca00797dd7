package performance

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/domain"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

type stubReader struct {
	predictions []Prediction
	err         error
}

func (s *stubReader) GetRecent(agent string, window time.Duration, limit int) ([]Prediction, error) {
	return s.predictions, s.err
}

func predictions(correct, wrong int, confidence float64) []Prediction {
	out := make([]Prediction, 0, correct+wrong)
	for i := 0; i < correct; i++ {
		out = append(out, Prediction{Confidence: confidence, PredictedDirection: "up", ActualDirection: "up"})
	}
	for i := 0; i < wrong; i++ {
		out = append(out, Prediction{Confidence: confidence, PredictedDirection: "up", ActualDirection: "down"})
	}
	return out
}

func TestScore_FromPredictionHistory(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	scorer := NewScorer(&stubReader{predictions: predictions(6, 2, 0.8)}, domain.FixedSource{}, zerolog.Nop())

	record := scorer.Score("ForecastAgent", regime.Bull, now)

	assert.Equal(t, "ForecastAgent", record.AgentName)
	assert.Equal(t, regime.Bull, record.Regime)
	assert.Equal(t, now, record.CreatedAt)

	// 6/8 correct
	assert.InDelta(t, 0.75, record.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, record.SharpeRatio, 1e-9)  // (0.75-0.5)*4
	assert.InDelta(t, 0.05, record.TotalReturn, 1e-9) // (0.75-0.5)*0.2
	assert.InDelta(t, 0.0, record.MaxDrawdown, 1e-9)  // max(0, 0.1-0.15)
	assert.InDelta(t, 0.75, record.WinRate, 1e-9)
	assert.InDelta(t, 0.8, record.Confidence, 1e-9)
	// FixedSource returns the midpoint of [0.1, 2.0)
	assert.InDelta(t, 1.05, record.ResponseTime, 1e-9)
}

func TestScore_DerivedMetricsStayNonNegative(t *testing.T) {
	scorer := NewScorer(&stubReader{predictions: predictions(1, 3, 0.6)}, domain.FixedSource{}, zerolog.Nop())

	record := scorer.Score("MomentumAgent", regime.Bear, time.Now().UTC())

	assert.InDelta(t, 0.25, record.Accuracy, 1e-9)
	assert.Equal(t, 0.0, record.SharpeRatio) // clamped, (0.25-0.5)*4 < 0
	assert.InDelta(t, -0.05, record.TotalReturn, 1e-9)
	assert.InDelta(t, 0.05, record.MaxDrawdown, 1e-9) // 0.1-0.25*0.2
}

func TestScore_NoHistoryUsesSyntheticEstimate(t *testing.T) {
	scorer := NewScorer(&stubReader{}, domain.FixedSource{}, zerolog.Nop())

	record := scorer.Score("RiskAgent", regime.Neutral, time.Now().UTC())

	// FixedSource base = midpoint of [0.4, 0.7) = 0.55
	assert.InDelta(t, 0.55, record.Accuracy, 1e-9)
	assert.InDelta(t, 0.1, record.SharpeRatio, 1e-9)     // (0.55-0.5)*2
	assert.InDelta(t, 0.0075, record.TotalReturn, 1e-9)  // (0.55-0.5)*0.15
	assert.InDelta(t, 0.0175, record.MaxDrawdown, 1e-9)  // 0.1-0.55*0.15
	assert.InDelta(t, 1.75, record.ResponseTime, 1e-9)   // midpoint of [0.5, 3.0)
	assert.Equal(t, regime.Neutral, record.Regime)
}

func TestScore_ReadFailureDegradesToNeutralRecord(t *testing.T) {
	scorer := NewScorer(&stubReader{err: fmt.Errorf("database locked")}, domain.FixedSource{}, zerolog.Nop())

	record := scorer.Score("StrategyAgent", regime.Volatile, time.Now().UTC())

	assert.Equal(t, 0.5, record.Accuracy)
	assert.Equal(t, 0.0, record.SharpeRatio)
	assert.Equal(t, 0.0, record.TotalReturn)
	assert.Equal(t, 0.1, record.MaxDrawdown)
	assert.Equal(t, 0.5, record.WinRate)
	assert.Equal(t, 0.5, record.Confidence)
	assert.Equal(t, 1.0, record.ResponseTime)
	assert.Equal(t, regime.Volatile, record.Regime)
}

func TestScore_BoundedSyntheticsWithRandomSource(t *testing.T) {
	scorer := NewScorer(&stubReader{}, domain.NewRandSource(42), zerolog.Nop())

	for i := 0; i < 50; i++ {
		record := scorer.Score("EventImpactAgent", regime.Neutral, time.Now().UTC())
		require.GreaterOrEqual(t, record.Accuracy, 0.4)
		require.Less(t, record.Accuracy, 0.7)
		require.GreaterOrEqual(t, record.ResponseTime, 0.5)
		require.Less(t, record.ResponseTime, 3.0)
	}
}
