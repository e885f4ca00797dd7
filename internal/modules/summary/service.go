// Package summary assembles the outward-facing meta-evaluation summary.
package summary

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
)

const (
	topAgentLimit    = 10
	rotationLimit    = 5
	statsWindowHours = 24
)

// AgentSummary is the condensed ranking entry served in the summary payload.
type AgentSummary struct {
	AgentName      string  `json:"agent_name"`
	Rank           int     `json:"rank"`
	CompositeScore float64 `json:"composite_score"`
	Accuracy       float64 `json:"accuracy"`
}

// Summary is the consolidated meta-evaluation view. It is advisory telemetry:
// assembly never fails, it degrades to defaults instead.
type Summary struct {
	CurrentRegime      regime.Label               `json:"current_regime"`
	RegimeConfidence   float64                    `json:"regime_confidence"`
	TopAgents          []AgentSummary             `json:"top_agents"`
	RecentRotations    []rotation.Decision        `json:"recent_rotations"`
	PerformanceSummary performance.AggregateStats `json:"performance_summary"`
	LastUpdated        time.Time                  `json:"last_updated"`
}

// SnapshotReader supplies the latest regime snapshot.
type SnapshotReader interface {
	Latest() (*regime.Snapshot, error)
}

// RankingReader supplies the current ranking set for a regime, best first.
type RankingReader interface {
	GetByRegime(label regime.Label, limit int) ([]ranking.Ranking, error)
}

// DecisionReader supplies recent rotation decisions, newest first.
type DecisionReader interface {
	Recent(limit int) ([]rotation.Decision, error)
}

// StatsReader supplies aggregate performance stats over a trailing window.
type StatsReader interface {
	AggregateSince(since time.Time) (performance.AggregateStats, error)
}

// Service assembles the summary from the store.
type Service struct {
	snapshots SnapshotReader
	rankings  RankingReader
	decisions DecisionReader
	stats     StatsReader
	log       zerolog.Logger
}

// NewService creates a new summary service
func NewService(snapshots SnapshotReader, rankings RankingReader, decisions DecisionReader, stats StatsReader, log zerolog.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		rankings:  rankings,
		decisions: decisions,
		stats:     stats,
		log:       log.With().Str("service", "summary").Logger(),
	}
}

// Summary builds the consolidated payload. Every read failure is absorbed:
// the corresponding section falls back to a well-formed default and the rest
// of the payload is still served. With no intervening cycle execution,
// repeated calls return identical payloads (LastUpdated derives from the
// latest snapshot, not the wall clock).
func (s *Service) Summary() Summary {
	result := Summary{
		CurrentRegime:    regime.Neutral,
		RegimeConfidence: 0.6,
		TopAgents:        []AgentSummary{},
		RecentRotations:  []rotation.Decision{},
	}

	snapshot, err := s.snapshots.Latest()
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("Failed to read latest regime snapshot, using defaults")
	case snapshot != nil:
		result.CurrentRegime = snapshot.Regime
		result.RegimeConfidence = snapshot.Confidence
		result.LastUpdated = snapshot.CreatedAt
	}

	rankings, err := s.rankings.GetByRegime(result.CurrentRegime, topAgentLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read rankings for summary")
	}
	for _, r := range rankings {
		result.TopAgents = append(result.TopAgents, AgentSummary{
			AgentName:      r.AgentName,
			Rank:           r.Rank,
			CompositeScore: r.CompositeScore,
			Accuracy:       r.Accuracy,
		})
	}

	decisions, err := s.decisions.Recent(rotationLimit)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read rotation decisions for summary")
	}
	if decisions != nil {
		result.RecentRotations = decisions
	}

	since := time.Now().UTC().Add(-statsWindowHours * time.Hour)
	stats, err := s.stats.AggregateSince(since)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read aggregate performance stats for summary")
		stats = performance.AggregateStats{}
	}
	result.PerformanceSummary = stats

	return result
}
