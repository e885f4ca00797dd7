package evaluation

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
)

// Cycle names, used for single-stepping and manual triggering.
const (
	CyclePerformance = "performance_collection"
	CycleRanking     = "ranking_analysis"
	CycleRotation    = "rotation_evaluation"
	CycleRegime      = "regime_refresh"
)

// Intervals holds the per-cycle loop intervals.
type Intervals struct {
	Performance time.Duration
	Ranking     time.Duration
	Rotation    time.Duration
	Regime      time.Duration
}

// Service implements the four evaluation cycle bodies. Each body is a full
// iteration: read collaborators, compute, persist. Bodies are independent and
// communicate only through the store.
type Service struct {
	regimeService *regime.Service
	scorer        *performance.Scorer
	perfRepo      *performance.Repository
	rankingEngine *ranking.Engine
	rankingRepo   *ranking.Repository
	rotation      *rotation.Service
	roster        []string
	log           zerolog.Logger
}

// NewService creates a new evaluation service
func NewService(
	regimeService *regime.Service,
	scorer *performance.Scorer,
	perfRepo *performance.Repository,
	rankingEngine *ranking.Engine,
	rankingRepo *ranking.Repository,
	rotationService *rotation.Service,
	roster []string,
	log zerolog.Logger,
) *Service {
	return &Service{
		regimeService: regimeService,
		scorer:        scorer,
		perfRepo:      perfRepo,
		rankingEngine: rankingEngine,
		rankingRepo:   rankingRepo,
		rotation:      rotationService,
		roster:        roster,
		log:           log.With().Str("service", "evaluation").Logger(),
	}
}

// Cycles builds the orchestrator cycle set with the given intervals.
func (s *Service) Cycles(intervals Intervals) []Cycle {
	return []Cycle{
		{Name: CyclePerformance, Interval: intervals.Performance, Run: s.CollectPerformance},
		{Name: CycleRanking, Interval: intervals.Ranking, Run: s.AnalyzeRankings},
		{Name: CycleRotation, Interval: intervals.Rotation, Run: s.EvaluateRotation},
		{Name: CycleRegime, Interval: intervals.Regime, Run: s.RefreshRegime},
	}
}

// CollectPerformance scores every roster agent under the prevailing regime
// and appends the records. A failed write drops that agent's record for this
// cycle; it never aborts the rest of the roster.
func (s *Service) CollectPerformance() error {
	label := s.regimeService.CurrentLabel()
	now := time.Now().UTC()

	for _, agent := range s.roster {
		record := s.scorer.Score(agent, label, now)
		if err := s.perfRepo.Insert(record); err != nil {
			s.log.Error().Err(err).Str("agent", agent).Msg("Failed to store performance record")
		}
	}

	s.log.Info().
		Int("agents", len(s.roster)).
		Str("regime", string(label)).
		Msg("Collected performance metrics")

	return nil
}

// AnalyzeRankings recomputes and replaces the ranking set for every regime.
func (s *Service) AnalyzeRankings() error {
	now := time.Now().UTC()

	for _, label := range regime.AllLabels {
		rankings := s.rankingEngine.Rank(label, now)
		if err := s.rankingRepo.ReplaceForRegime(label, rankings); err != nil {
			s.log.Error().Err(err).Str("regime", string(label)).Msg("Failed to store rankings")
		}
	}

	s.log.Info().Msg("Updated agent rankings for all regimes")

	return nil
}

// EvaluateRotation runs one rotation evaluation against the prevailing regime.
func (s *Service) EvaluateRotation() error {
	label := s.regimeService.CurrentLabel()

	decision, err := s.rotation.EvaluateAndStore(label)
	if err != nil {
		return err
	}

	if decision != nil {
		s.log.Info().
			Str("from", decision.FromAgent).
			Str("to", decision.ToAgent).
			Msg("Rotation decision made")
	}

	return nil
}

// RefreshRegime reclassifies the market regime and appends the snapshot.
func (s *Service) RefreshRegime() error {
	_, err := s.regimeService.Refresh()
	return err
}
