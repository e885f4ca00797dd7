package summary

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
)

type stubStore struct {
	snapshot    *regime.Snapshot
	snapshotErr error
	rankings    []ranking.Ranking
	rankingsErr error
	decisions   []rotation.Decision
	decisionErr error
	stats       performance.AggregateStats
	statsErr    error
}

func (s *stubStore) Latest() (*regime.Snapshot, error) { return s.snapshot, s.snapshotErr }
func (s *stubStore) GetByRegime(label regime.Label, limit int) ([]ranking.Ranking, error) {
	return s.rankings, s.rankingsErr
}
func (s *stubStore) Recent(limit int) ([]rotation.Decision, error) {
	return s.decisions, s.decisionErr
}
func (s *stubStore) AggregateSince(since time.Time) (performance.AggregateStats, error) {
	return s.stats, s.statsErr
}

func newService(store *stubStore) *Service {
	return NewService(store, store, store, store, zerolog.Nop())
}

func TestSummary_AssemblesAllSections(t *testing.T) {
	created := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	store := &stubStore{
		snapshot: &regime.Snapshot{Regime: regime.Bull, Confidence: 0.85, CreatedAt: created},
		rankings: []ranking.Ranking{
			{AgentName: "ForecastAgent", Rank: 1, CompositeScore: 0.8, Accuracy: 0.75},
			{AgentName: "MomentumAgent", Rank: 2, CompositeScore: 0.6, Accuracy: 0.6},
		},
		decisions: []rotation.Decision{{DecisionID: "rotation_20250701_090000_abcd1234"}},
		stats:     performance.AggregateStats{TotalAgents: 10, AvgAccuracy: 0.62},
	}

	result := newService(store).Summary()

	assert.Equal(t, regime.Bull, result.CurrentRegime)
	assert.Equal(t, 0.85, result.RegimeConfidence)
	assert.Equal(t, created, result.LastUpdated)

	require.Len(t, result.TopAgents, 2)
	assert.Equal(t, "ForecastAgent", result.TopAgents[0].AgentName)
	assert.Equal(t, 1, result.TopAgents[0].Rank)

	require.Len(t, result.RecentRotations, 1)
	assert.Equal(t, 10, result.PerformanceSummary.TotalAgents)
}

func TestSummary_EveryReadFailureDegradesToDefaults(t *testing.T) {
	store := &stubStore{
		snapshotErr: fmt.Errorf("read failed"),
		rankingsErr: fmt.Errorf("read failed"),
		decisionErr: fmt.Errorf("read failed"),
		statsErr:    fmt.Errorf("read failed"),
	}

	result := newService(store).Summary()

	assert.Equal(t, regime.Neutral, result.CurrentRegime)
	assert.Equal(t, 0.6, result.RegimeConfidence)
	assert.NotNil(t, result.TopAgents)
	assert.Empty(t, result.TopAgents)
	assert.NotNil(t, result.RecentRotations)
	assert.Empty(t, result.RecentRotations)
	assert.Equal(t, performance.AggregateStats{}, result.PerformanceSummary)
}

func TestSummary_EmptyStoreUsesNeutralDefaults(t *testing.T) {
	result := newService(&stubStore{}).Summary()

	assert.Equal(t, regime.Neutral, result.CurrentRegime)
	assert.Equal(t, 0.6, result.RegimeConfidence)
	assert.True(t, result.LastUpdated.IsZero())
}

func TestSummary_IdempotentWithoutInterveningCycles(t *testing.T) {
	created := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	store := &stubStore{
		snapshot: &regime.Snapshot{Regime: regime.Volatile, Confidence: 0.9, CreatedAt: created},
		rankings: []ranking.Ranking{{AgentName: "RiskAgent", Rank: 1, CompositeScore: 0.7}},
	}
	svc := newService(store)

	first := svc.Summary()
	second := svc.Summary()

	// LastUpdated derives from the stored snapshot, not the wall clock, so
	// repeated reads return identical payloads.
	assert.Equal(t, first, second)
}
