package evaluation

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/domain"
	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
)

var testRoster = []string{"ForecastAgent", "MomentumAgent", "VolatilityAgent"}

type stubMarket struct {
	candles []krx.Candle
	err     error
}

func (s *stubMarket) GetPriceHistory(symbol string, days int) ([]krx.Candle, error) {
	return s.candles, s.err
}

type fixture struct {
	service      *Service
	regimeRepo   *regime.Repository
	signalRepo   *performance.SignalRepository
	perfRepo     *performance.Repository
	rankingRepo  *ranking.Repository
	rotationRepo *rotation.Repository
}

// newFixture wires the full cycle stack over a real store, with market data
// unavailable and deterministic synthetics.
func newFixture(t *testing.T, active []string) *fixture {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	log := zerolog.Nop()
	regimeRepo := regime.NewRepository(db.Conn(), log)
	signalRepo := performance.NewSignalRepository(db.Conn(), log)
	perfRepo := performance.NewRepository(db.Conn(), log)
	rankingRepo := ranking.NewRepository(db.Conn(), log)
	rotationRepo := rotation.NewRepository(db.Conn(), log)

	synthetic := domain.FixedSource{}
	regimeService := regime.NewService(&stubMarket{err: fmt.Errorf("unavailable")}, regime.NewClassifier(log), regimeRepo, "KS11", log)
	scorer := performance.NewScorer(signalRepo, synthetic, log)
	rankingEngine := ranking.NewEngine(perfRepo, testRoster, synthetic, log)
	rotationService := rotation.NewService(rankingRepo, rotation.NewStaticActiveSet(active), rotation.NewEngine(log), rotationRepo, log)

	return &fixture{
		service:      NewService(regimeService, scorer, perfRepo, rankingEngine, rankingRepo, rotationService, testRoster, log),
		regimeRepo:   regimeRepo,
		signalRepo:   signalRepo,
		perfRepo:     perfRepo,
		rankingRepo:  rankingRepo,
		rotationRepo: rotationRepo,
	}
}

func TestCycles_ColdStartProducesFullPipeline(t *testing.T) {
	f := newFixture(t, testRoster)

	// Run one iteration of every cycle against an empty store
	require.NoError(t, f.service.RefreshRegime())
	require.NoError(t, f.service.CollectPerformance())
	require.NoError(t, f.service.AnalyzeRankings())
	require.NoError(t, f.service.EvaluateRotation())

	// Regime: market data is down, so the fallback snapshot landed
	snapshot, err := f.regimeRepo.Latest()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, regime.Neutral, snapshot.Regime)

	// Performance: one synthetic record per roster agent under neutral
	records, err := f.perfRepo.GetByRegimeSince(regime.Neutral, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, records, len(testRoster))
	for _, record := range records {
		assert.InDelta(t, 0.55, record.Accuracy, 1e-9) // FixedSource midpoint of [0.4, 0.7)
	}

	// Rankings: every regime carries a full, contiguous set
	for _, label := range regime.AllLabels {
		rankings, err := f.rankingRepo.GetByRegime(label, 100)
		require.NoError(t, err)
		require.Len(t, rankings, len(testRoster), "regime %s", label)
		for i, r := range rankings {
			assert.Equal(t, i+1, r.Rank)
		}
	}

	// Rotation: with every agent active there is nothing to rotate in
	decisions, err := f.rotationRepo.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestCollectPerformance_UsesIngestedSignals(t *testing.T) {
	f := newFixture(t, testRoster)
	now := time.Now().UTC()

	// ForecastAgent has real history: 3 of 4 correct
	for i, correct := range []bool{true, true, true, false} {
		actual := "up"
		if !correct {
			actual = "down"
		}
		require.NoError(t, f.signalRepo.Insert("ForecastAgent", performance.Prediction{
			Confidence:         0.8,
			PredictedDirection: "up",
			ActualDirection:    actual,
			CreatedAt:          now.Add(-time.Duration(i) * time.Minute),
		}))
	}

	require.NoError(t, f.service.CollectPerformance())

	records, err := f.perfRepo.GetByRegimeSince(regime.Neutral, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, records, len(testRoster))

	byAgent := map[string]performance.Record{}
	for _, record := range records {
		byAgent[record.AgentName] = record
	}

	assert.InDelta(t, 0.75, byAgent["ForecastAgent"].Accuracy, 1e-9)
	// Agents without history fall back to the synthetic estimate
	assert.InDelta(t, 0.55, byAgent["MomentumAgent"].Accuracy, 1e-9)
}

func TestEvaluateRotation_RecordsDecisionWhenChallengerLeads(t *testing.T) {
	// Only VolatilityAgent is active; give a challenger a dominant ranking
	f := newFixture(t, []string{"VolatilityAgent"})
	now := time.Now().UTC()

	require.NoError(t, f.rankingRepo.ReplaceForRegime(regime.Neutral, []ranking.Ranking{
		{AgentName: "ForecastAgent", Regime: regime.Neutral, Rank: 1, CompositeScore: 0.9, CreatedAt: now},
		{AgentName: "VolatilityAgent", Regime: regime.Neutral, Rank: 2, CompositeScore: 0.5, CreatedAt: now},
	}))

	require.NoError(t, f.service.EvaluateRotation())

	decisions, err := f.rotationRepo.Recent(10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "VolatilityAgent", decisions[0].FromAgent)
	assert.Equal(t, "ForecastAgent", decisions[0].ToAgent)
	assert.InDelta(t, 0.4, decisions[0].ExpectedImprovement, 1e-9)
}

func TestCycles_NamesAndIntervalsAreWired(t *testing.T) {
	f := newFixture(t, testRoster)

	cycles := f.service.Cycles(Intervals{
		Performance: 60 * time.Second,
		Ranking:     300 * time.Second,
		Rotation:    600 * time.Second,
		Regime:      120 * time.Second,
	})
	require.Len(t, cycles, 4)

	byName := map[string]Cycle{}
	for _, cycle := range cycles {
		byName[cycle.Name] = cycle
	}

	assert.Equal(t, 60*time.Second, byName[CyclePerformance].Interval)
	assert.Equal(t, 300*time.Second, byName[CycleRanking].Interval)
	assert.Equal(t, 600*time.Second, byName[CycleRotation].Interval)
	assert.Equal(t, 120*time.Second, byName[CycleRegime].Interval)
}
