package regime

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// snapshotColumns is the column list for regime_snapshots.
// Order must match scanSnapshot.
const snapshotColumns = `regime, confidence, volatility, trend_strength, volume_ratio, trend_direction, indicators, created_at`

// Repository handles regime snapshot persistence (append-only history).
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new regime snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "regime").Logger(),
	}
}

// Insert appends a snapshot to the history.
func (r *Repository) Insert(snapshot Snapshot) error {
	indicators, err := json.Marshal(snapshot.Indicators)
	if err != nil {
		return fmt.Errorf("failed to marshal indicators: %w", err)
	}

	query := `
		INSERT INTO regime_snapshots
		(regime, confidence, volatility, trend_strength, volume_ratio, trend_direction, indicators, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		string(snapshot.Regime),
		snapshot.Confidence,
		snapshot.Volatility,
		snapshot.TrendStrength,
		snapshot.VolumeRatio,
		snapshot.TrendDirection,
		string(indicators),
		snapshot.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert regime snapshot: %w", err)
	}

	r.log.Debug().
		Str("regime", string(snapshot.Regime)).
		Float64("confidence", snapshot.Confidence).
		Msg("Regime snapshot stored")

	return nil
}

// Latest returns the most recent snapshot, or nil when history is empty.
func (r *Repository) Latest() (*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM regime_snapshots ORDER BY id DESC LIMIT 1`

	snapshot, err := scanSnapshot(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest regime snapshot: %w", err)
	}

	return &snapshot, nil
}

// History returns recent snapshots, newest first.
func (r *Repository) History(limit int) ([]Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM regime_snapshots ORDER BY id DESC LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get regime history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshotRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan regime snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// PruneBefore deletes snapshots older than the cutoff. Used by retention maintenance.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM regime_snapshots WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune regime snapshots: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row *sql.Row) (Snapshot, error) {
	return scanSnapshotRows(row)
}

func scanSnapshotRows(row rowScanner) (Snapshot, error) {
	var snapshot Snapshot
	var regime string
	var indicators string
	var createdAt int64

	if err := row.Scan(
		&regime,
		&snapshot.Confidence,
		&snapshot.Volatility,
		&snapshot.TrendStrength,
		&snapshot.VolumeRatio,
		&snapshot.TrendDirection,
		&indicators,
		&createdAt,
	); err != nil {
		return Snapshot{}, err
	}

	snapshot.Regime = Label(regime)
	snapshot.CreatedAt = time.Unix(createdAt, 0).UTC()
	snapshot.Indicators = make(map[string]float64)
	if err := json.Unmarshal([]byte(indicators), &snapshot.Indicators); err != nil {
		// A malformed bag shouldn't hide an otherwise valid snapshot
		snapshot.Indicators = placeholderIndicators()
	}

	return snapshot, nil
}
