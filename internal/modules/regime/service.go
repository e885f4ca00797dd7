package regime

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
)

// MarketDataProvider supplies daily price history for the benchmark symbol.
// May return an empty series or fail; the service degrades to a fallback
// snapshot in both cases.
type MarketDataProvider interface {
	GetPriceHistory(symbol string, days int) ([]krx.Candle, error)
}

// Service classifies the current market regime and maintains snapshot history.
type Service struct {
	provider     MarketDataProvider
	classifier   *Classifier
	repo         *Repository
	symbol       string
	lookbackDays int
	log          zerolog.Logger
}

// NewService creates a new regime service
func NewService(provider MarketDataProvider, classifier *Classifier, repo *Repository, symbol string, log zerolog.Logger) *Service {
	return &Service{
		provider:     provider,
		classifier:   classifier,
		repo:         repo,
		symbol:       symbol,
		lookbackDays: 30,
		log:          log.With().Str("service", "regime").Logger(),
	}
}

// Refresh classifies the current regime and appends the snapshot to history.
// Provider failures degrade to the fallback snapshot; only a persistence
// failure is reported to the caller.
func (s *Service) Refresh() (Snapshot, error) {
	snapshot := s.Detect()

	if err := s.repo.Insert(snapshot); err != nil {
		return snapshot, err
	}

	s.log.Info().
		Str("regime", string(snapshot.Regime)).
		Float64("confidence", snapshot.Confidence).
		Msg("Regime analysis updated")

	return snapshot, nil
}

// Detect classifies the current regime without persisting it.
func (s *Service) Detect() Snapshot {
	now := time.Now().UTC()

	candles, err := s.provider.GetPriceHistory(s.symbol, s.lookbackDays)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", s.symbol).Msg("Market data unavailable, using fallback snapshot")
		return FallbackSnapshot(now)
	}

	return s.classifier.Classify(candles, now)
}

// CurrentLabel returns the most recently stored regime label.
// Cycles coordinate through the store, so this is how the performance and
// rotation cycles learn the prevailing regime. Falls back to neutral when
// history is empty or unreadable.
func (s *Service) CurrentLabel() Label {
	snapshot, err := s.repo.Latest()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read latest regime snapshot, assuming neutral")
		return Neutral
	}
	if snapshot == nil {
		return Neutral
	}
	return snapshot.Regime
}

// Current returns the latest stored snapshot, or the fallback when none exists.
func (s *Service) Current() Snapshot {
	snapshot, err := s.repo.Latest()
	if err != nil || snapshot == nil {
		return FallbackSnapshot(time.Now().UTC())
	}
	return *snapshot
}
