package rotation

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
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

type stubRankings struct {
	rankings []ranking.Ranking
	err      error
}

func (s *stubRankings) GetByRegime(label regime.Label, limit int) ([]ranking.Ranking, error) {
	return s.rankings, s.err
}

func TestEvaluateAndStore_PersistsDecision(t *testing.T) {
	repo := newTestRepo(t)
	rankings := &stubRankings{rankings: bestFirst("A", 0.9, "B", 0.5)}
	svc := NewService(rankings, NewStaticActiveSet([]string{"B"}), NewEngine(zerolog.Nop()), repo, zerolog.Nop())

	decision, err := svc.EvaluateAndStore(regime.Bull)
	require.NoError(t, err)
	require.NotNil(t, decision)

	stored, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, decision.DecisionID, stored[0].DecisionID)
	assert.Equal(t, "B", stored[0].FromAgent)
	assert.Equal(t, "A", stored[0].ToAgent)
	assert.Equal(t, regime.Bull, stored[0].Regime)
}

func TestEvaluateAndStore_NoDecisionIsNotAnError(t *testing.T) {
	repo := newTestRepo(t)
	rankings := &stubRankings{rankings: bestFirst("A", 0.55, "B", 0.5)}
	svc := NewService(rankings, NewStaticActiveSet([]string{"B"}), NewEngine(zerolog.Nop()), repo, zerolog.Nop())

	decision, err := svc.EvaluateAndStore(regime.Bull)
	require.NoError(t, err)
	assert.Nil(t, decision)

	stored, err := repo.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEvaluateAndStore_UnreadableRankingsSkipEvaluation(t *testing.T) {
	repo := newTestRepo(t)
	rankings := &stubRankings{err: fmt.Errorf("database locked")}
	svc := NewService(rankings, NewStaticActiveSet([]string{"B"}), NewEngine(zerolog.Nop()), repo, zerolog.Nop())

	decision, err := svc.EvaluateAndStore(regime.Bull)
	require.NoError(t, err)
	assert.Nil(t, decision)
}

func TestRepository_RecentNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	engine := NewEngine(zerolog.Nop())

	times := []string{"2025-07-01T09:00:00Z", "2025-07-01T10:00:00Z", "2025-07-01T11:00:00Z"}
	for _, ts := range times {
		now := mustParseTime(t, ts)
		decision := engine.Evaluate(regime.Bull, bestFirst("A", 0.9, "B", 0.5), []string{"B"}, now)
		require.NotNil(t, decision)
		require.NoError(t, repo.Insert(*decision))
	}

	decisions, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	assert.Equal(t, mustParseTime(t, times[2]), decisions[0].CreatedAt)
	assert.Equal(t, mustParseTime(t, times[1]), decisions[1].CreatedAt)
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.UTC()
}

func TestStaticActiveSet_CopiesInput(t *testing.T) {
	agents := []string{"A", "B"}
	set := NewStaticActiveSet(agents)

	agents[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, set.Active())
}
