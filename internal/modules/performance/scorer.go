package performance

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/domain"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

const (
	// historyWindow is the trailing window of predictions considered per agent.
	historyWindow = 7 * 24 * time.Hour
	// historyLimit caps how many recent predictions feed one score.
	historyLimit = 100
)

// PredictionReader supplies an agent's recent prediction history.
type PredictionReader interface {
	GetRecent(agent string, window time.Duration, limit int) ([]Prediction, error)
}

// Scorer turns an agent's prediction history into a performance Record.
// It never fails: missing history falls back to a synthetic estimate and
// read errors produce a neutral-default record, so one bad agent can't
// abort a collection cycle.
type Scorer struct {
	signals   PredictionReader
	synthetic domain.SyntheticSource
	log       zerolog.Logger
}

// NewScorer creates a new performance scorer
func NewScorer(signals PredictionReader, synthetic domain.SyntheticSource, log zerolog.Logger) *Scorer {
	return &Scorer{
		signals:   signals,
		synthetic: synthetic,
		log:       log.With().Str("component", "performance_scorer").Logger(),
	}
}

// Score produces one Record for the agent under the given regime.
func (s *Scorer) Score(agent string, label regime.Label, now time.Time) Record {
	predictions, err := s.signals.GetRecent(agent, historyWindow, historyLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("agent", agent).Msg("Failed to read prediction history, using neutral record")
		return neutralRecord(agent, label, now)
	}

	if len(predictions) == 0 {
		return s.syntheticRecord(agent, label, now)
	}

	correct := 0
	confidenceSum := 0.0
	for _, p := range predictions {
		if p.Correct() {
			correct++
		}
		confidenceSum += p.Confidence
	}

	accuracy := float64(correct) / float64(len(predictions))
	avgConfidence := confidenceSum / float64(len(predictions))

	// Derived metrics are deterministic functions of accuracy. Response
	// latency isn't derivable from history, so it stays a bounded estimate.
	return Record{
		AgentName:    agent,
		Accuracy:     accuracy,
		SharpeRatio:  max0((accuracy - 0.5) * 4),
		TotalReturn:  (accuracy - 0.5) * 0.2,
		MaxDrawdown:  max0(0.1 - accuracy*0.2),
		WinRate:      accuracy,
		Confidence:   avgConfidence,
		ResponseTime: s.synthetic.Uniform(0.1, 2.0),
		Regime:       label,
		CreatedAt:    now,
	}
}

// syntheticRecord estimates an agent with no recorded history from a single
// base-performance draw, keeping it on par with mediocre real data.
func (s *Scorer) syntheticRecord(agent string, label regime.Label, now time.Time) Record {
	base := s.synthetic.Uniform(0.4, 0.7)

	s.log.Debug().Str("agent", agent).Float64("base", base).Msg("No prediction history, using synthetic estimate")

	return Record{
		AgentName:    agent,
		Accuracy:     base,
		SharpeRatio:  (base - 0.5) * 2,
		TotalReturn:  (base - 0.5) * 0.15,
		MaxDrawdown:  0.1 - base*0.15,
		WinRate:      base,
		Confidence:   base,
		ResponseTime: s.synthetic.Uniform(0.5, 3.0),
		Regime:       label,
		CreatedAt:    now,
	}
}

// neutralRecord is the degraded result for an agent whose history read failed.
func neutralRecord(agent string, label regime.Label, now time.Time) Record {
	return Record{
		AgentName:    agent,
		Accuracy:     0.5,
		SharpeRatio:  0.0,
		TotalReturn:  0.0,
		MaxDrawdown:  0.1,
		WinRate:      0.5,
		Confidence:   0.5,
		ResponseTime: 1.0,
		Regime:       label,
		CreatedAt:    now,
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
