package ranking

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func rankingSet(label regime.Label, agents ...string) []Ranking {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	out := make([]Ranking, len(agents))
	for i, agent := range agents {
		out[i] = Ranking{
			AgentName:      agent,
			Regime:         label,
			Rank:           i + 1,
			CompositeScore: 1.0 - float64(i)*0.1,
			Accuracy:       0.6,
			WinRate:        0.6,
			Confidence:     0.7,
			ResponseTime:   1.0,
			CreatedAt:      now,
		}
	}
	return out
}

func TestRepository_ReplaceForRegimeIsWholesale(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.ReplaceForRegime(regime.Bull, rankingSet(regime.Bull, "ForecastAgent", "MomentumAgent")))
	require.NoError(t, repo.ReplaceForRegime(regime.Bull, rankingSet(regime.Bull, "VolatilityAgent")))

	rankings, err := repo.GetByRegime(regime.Bull, 100)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, "VolatilityAgent", rankings[0].AgentName)
	assert.Equal(t, 1, rankings[0].Rank)
}

func TestRepository_ReplaceForRegimeLeavesOtherRegimesAlone(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.ReplaceForRegime(regime.Bull, rankingSet(regime.Bull, "ForecastAgent")))
	require.NoError(t, repo.ReplaceForRegime(regime.Bear, rankingSet(regime.Bear, "RiskAgent")))

	require.NoError(t, repo.ReplaceForRegime(regime.Bull, rankingSet(regime.Bull, "MomentumAgent")))

	bear, err := repo.GetByRegime(regime.Bear, 100)
	require.NoError(t, err)
	require.Len(t, bear, 1)
	assert.Equal(t, "RiskAgent", bear[0].AgentName)
}

func TestRepository_GetByRegimeOrdersByRank(t *testing.T) {
	repo := newTestRepo(t)

	set := rankingSet(regime.Neutral, "A", "B", "C")
	// Insert out of rank order; reads must still come back rank ascending
	require.NoError(t, repo.ReplaceForRegime(regime.Neutral, []Ranking{set[2], set[0], set[1]}))

	rankings, err := repo.GetByRegime(regime.Neutral, 2)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, 2, rankings[1].Rank)
}

func TestRepository_GetByRegimeEmpty(t *testing.T) {
	repo := newTestRepo(t)

	rankings, err := repo.GetByRegime(regime.Trending, 10)
	require.NoError(t, err)
	assert.Empty(t, rankings)
}
