package rotation

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
)

// RankingReader supplies the current ranking set for a regime, best first.
type RankingReader interface {
	GetByRegime(label regime.Label, limit int) ([]ranking.Ranking, error)
}

// ActiveSetProvider reports which agents are currently deployed for live
// decisions. The engine reads this set but does not own or mutate it.
type ActiveSetProvider interface {
	Active() []string
}

// StaticActiveSet is a fixed active-agent roster from configuration.
type StaticActiveSet struct {
	agents []string
}

// NewStaticActiveSet creates a provider around a fixed roster.
func NewStaticActiveSet(agents []string) *StaticActiveSet {
	copied := make([]string, len(agents))
	copy(copied, agents)
	return &StaticActiveSet{agents: copied}
}

// Active returns the configured active agents.
func (s *StaticActiveSet) Active() []string {
	return s.agents
}

// Service runs one rotation evaluation against stored rankings and appends
// any resulting decision to the log.
type Service struct {
	rankings  RankingReader
	activeSet ActiveSetProvider
	engine    *Engine
	repo      *Repository
	log       zerolog.Logger
}

// NewService creates a new rotation service
func NewService(rankings RankingReader, activeSet ActiveSetProvider, engine *Engine, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		rankings:  rankings,
		activeSet: activeSet,
		engine:    engine,
		repo:      repo,
		log:       log.With().Str("service", "rotation").Logger(),
	}
}

// EvaluateAndStore produces at most one decision for the current cycle.
// Insufficient or unreadable rankings mean "no decision this cycle", not an
// error; only a failed persistence write is reported.
func (s *Service) EvaluateAndStore(label regime.Label) (*Decision, error) {
	rankings, err := s.rankings.GetByRegime(label, 100)
	if err != nil {
		s.log.Warn().Err(err).Str("regime", string(label)).Msg("Failed to read rankings, skipping rotation evaluation")
		return nil, nil
	}

	decision := s.engine.Evaluate(label, rankings, s.activeSet.Active(), time.Now().UTC())
	if decision == nil {
		return nil, nil
	}

	if err := s.repo.Insert(*decision); err != nil {
		return nil, err
	}

	return decision, nil
}
