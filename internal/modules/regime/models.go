package regime

import "time"

// Label is a discrete market regime classification.
type Label string

const (
	Bull     Label = "bull"
	Bear     Label = "bear"
	Neutral  Label = "neutral"
	Volatile Label = "volatile"
	Trending Label = "trending"
)

// AllLabels lists every regime the classifier can produce.
// Ranking analysis iterates this set so each regime keeps a current ranking.
var AllLabels = []Label{Bull, Bear, Neutral, Volatile, Trending}

// Valid reports whether l is one of the known regime labels.
func (l Label) Valid() bool {
	switch l {
	case Bull, Bear, Neutral, Volatile, Trending:
		return true
	}
	return false
}

// Snapshot captures one regime classification cycle.
// Snapshots are append-only; history is never rewritten.
type Snapshot struct {
	Regime         Label              `json:"regime"`
	Confidence     float64            `json:"confidence"`
	Volatility     float64            `json:"volatility"`
	TrendStrength  float64            `json:"trend_strength"`
	VolumeRatio    float64            `json:"volume_ratio"`
	TrendDirection string             `json:"trend_direction"` // up, down, or neutral
	Indicators     map[string]float64 `json:"market_indicators"`
	CreatedAt      time.Time          `json:"timestamp"`
}

// FallbackSnapshot is the degraded-but-valid result used when market data is
// unavailable. It pins the regime to neutral with reduced confidence.
func FallbackSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Regime:         Neutral,
		Confidence:     0.6,
		Volatility:     0.15,
		TrendStrength:  0.02,
		VolumeRatio:    1.0,
		TrendDirection: "neutral",
		Indicators:     placeholderIndicators(),
		CreatedAt:      now,
	}
}

func placeholderIndicators() map[string]float64 {
	return map[string]float64{
		"rsi":                50.0,
		"macd":               0.0,
		"bollinger_position": 0.5,
	}
}
