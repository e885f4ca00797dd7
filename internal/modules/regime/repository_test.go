package regime

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junghoon-dev/arbiter/internal/database"
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

func testSnapshot(label Label, createdAt time.Time) Snapshot {
	return Snapshot{
		Regime:         label,
		Confidence:     0.8,
		Volatility:     0.12,
		TrendStrength:  0.03,
		VolumeRatio:    1.1,
		TrendDirection: "up",
		Indicators:     map[string]float64{"rsi": 61.5, "macd": 0.4, "bollinger_position": 0.7},
		CreatedAt:      createdAt,
	}
}

func TestRepository_LatestOnEmptyHistory(t *testing.T) {
	repo := newTestRepo(t)

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestRepository_InsertAndLatest(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(testSnapshot(Bull, now)))
	require.NoError(t, repo.Insert(testSnapshot(Volatile, now.Add(time.Minute))))

	latest, err := repo.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, Volatile, latest.Regime)
	assert.Equal(t, now.Add(time.Minute), latest.CreatedAt)
	assert.Equal(t, 61.5, latest.Indicators["rsi"])
}

func TestRepository_HistoryNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	for i, label := range []Label{Bull, Bear, Neutral} {
		require.NoError(t, repo.Insert(testSnapshot(label, now.Add(time.Duration(i)*time.Minute))))
	}

	history, err := repo.History(2)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, Neutral, history[0].Regime)
	assert.Equal(t, Bear, history[1].Regime)
}

func TestRepository_PruneBefore(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(testSnapshot(Bull, now.Add(-48*time.Hour))))
	require.NoError(t, repo.Insert(testSnapshot(Bear, now)))

	deleted, err := repo.PruneBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	latest, err := repo.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, Bear, latest.Regime)
}
