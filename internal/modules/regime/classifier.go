package regime

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
)

const (
	// tradingDaysPerYear annualizes daily return volatility.
	tradingDaysPerYear = 252

	volatileThreshold = 0.25
	bullThreshold     = 0.05
	bearThreshold     = -0.05
	neutralBand       = 0.02

	recentVolumeWindow = 5
	maxConfidence      = 0.95
)

// Classifier turns a daily price/volume series into a regime Snapshot.
// Classification is a pure function of the input series.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a new regime classifier
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		log: log.With().Str("component", "regime_classifier").Logger(),
	}
}

// Classify produces a Snapshot from a time-ordered (oldest-first) candle series.
// An empty or single-candle series yields the fallback snapshot.
func (c *Classifier) Classify(candles []krx.Candle, now time.Time) Snapshot {
	if len(candles) < 2 {
		return FallbackSnapshot(now)
	}

	returns := dailyReturns(candles)
	volatility := stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
	trend := candles[len(candles)-1].Close/candles[0].Close - 1
	volumeRatio := c.volumeRatio(candles)

	var label Label
	var confidence float64

	// Precedence matters: high volatility overrides any trend signal.
	switch {
	case volatility > volatileThreshold:
		label = Volatile
		confidence = math.Min(maxConfidence, volatility*2)
	case trend > bullThreshold:
		label = Bull
		confidence = math.Min(maxConfidence, math.Abs(trend)*10)
	case trend < bearThreshold:
		label = Bear
		confidence = math.Min(maxConfidence, math.Abs(trend)*10)
	case math.Abs(trend) < neutralBand:
		label = Neutral
		confidence = 0.8
	default:
		label = Trending
		confidence = math.Min(maxConfidence, math.Abs(trend)*8)
	}

	direction := "down"
	if trend > 0 {
		direction = "up"
	}

	snapshot := Snapshot{
		Regime:         label,
		Confidence:     confidence,
		Volatility:     volatility,
		TrendStrength:  math.Abs(trend),
		VolumeRatio:    volumeRatio,
		TrendDirection: direction,
		Indicators:     c.indicators(candles),
		CreatedAt:      now,
	}

	c.log.Debug().
		Str("regime", string(label)).
		Float64("confidence", confidence).
		Float64("volatility", volatility).
		Float64("trend", trend).
		Msg("Classified market regime")

	return snapshot
}

// dailyReturns computes simple daily returns, skipping zero closes.
func dailyReturns(candles []krx.Candle) []float64 {
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, candles[i].Close/prev-1)
	}
	return returns
}

// volumeRatio compares recent volume against the full window average.
func (c *Classifier) volumeRatio(candles []krx.Candle) float64 {
	volumes := make([]float64, len(candles))
	for i, candle := range candles {
		volumes[i] = candle.Volume
	}

	avg := stat.Mean(volumes, nil)
	if avg <= 0 {
		return 1.0
	}

	recent := volumes
	if len(volumes) > recentVolumeWindow {
		recent = volumes[len(volumes)-recentVolumeWindow:]
	}

	return stat.Mean(recent, nil) / avg
}

// indicators computes the auxiliary indicator bag (RSI, MACD, Bollinger %B).
// Indicators that need more history than the window provides keep their
// placeholder value so the bag shape is stable.
func (c *Classifier) indicators(candles []krx.Candle) map[string]float64 {
	bag := placeholderIndicators()

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	if len(closes) >= 15 {
		rsi := talib.Rsi(closes, 14)
		if last := rsi[len(rsi)-1]; !math.IsNaN(last) {
			bag["rsi"] = last
		}
	}

	if len(closes) >= 35 {
		macd, _, _ := talib.Macd(closes, 12, 26, 9)
		if last := macd[len(macd)-1]; !math.IsNaN(last) {
			bag["macd"] = last
		}
	}

	if len(closes) >= 20 {
		upper, _, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
		lastUpper := upper[len(upper)-1]
		lastLower := lower[len(lower)-1]
		lastClose := closes[len(closes)-1]
		if band := lastUpper - lastLower; band > 0 {
			bag["bollinger_position"] = (lastClose - lastLower) / band
		}
	}

	return bag
}
