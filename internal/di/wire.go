// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
	"github.com/junghoon-dev/arbiter/internal/config"
	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/domain"
	"github.com/junghoon-dev/arbiter/internal/evaluation"
	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
	"github.com/junghoon-dev/arbiter/internal/modules/summary"
	"github.com/junghoon-dev/arbiter/internal/scheduler"
)

// Container holds all wired dependencies.
// Repositories share one meta store; services are created with repository
// dependencies via constructor injection.
type Container struct {
	DB *database.DB

	KRXClient *krx.Client

	RegimeRepo   *regime.Repository
	SignalRepo   *performance.SignalRepository
	PerfRepo     *performance.Repository
	RankingRepo  *ranking.Repository
	RotationRepo *rotation.Repository

	RegimeService   *regime.Service
	Scorer          *performance.Scorer
	RankingEngine   *ranking.Engine
	RotationService *rotation.Service
	SummaryService  *summary.Service

	EvaluationService *evaluation.Service
	Orchestrator      *evaluation.Orchestrator
	Scheduler         *scheduler.Scheduler
}

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Open and migrate the meta store
// 2. Create repositories
// 3. Create services and the evaluation cycle orchestrator
// 4. Register maintenance jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "arbiter.db"),
		Name: "meta",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open meta store: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate meta store: %w", err)
	}

	c := &Container{DB: db}

	c.KRXClient = krx.NewClient(cfg.KRXBaseURL, log)

	c.RegimeRepo = regime.NewRepository(db.Conn(), log)
	c.SignalRepo = performance.NewSignalRepository(db.Conn(), log)
	c.PerfRepo = performance.NewRepository(db.Conn(), log)
	c.RankingRepo = ranking.NewRepository(db.Conn(), log)
	c.RotationRepo = rotation.NewRepository(db.Conn(), log)

	synthetic := domain.NewRandSource(time.Now().UnixNano())

	c.RegimeService = regime.NewService(c.KRXClient, regime.NewClassifier(log), c.RegimeRepo, cfg.BenchmarkSymbol, log)
	c.Scorer = performance.NewScorer(c.SignalRepo, synthetic, log)
	c.RankingEngine = ranking.NewEngine(c.PerfRepo, cfg.Agents, synthetic, log)
	c.RotationService = rotation.NewService(
		c.RankingRepo,
		rotation.NewStaticActiveSet(cfg.ActiveAgents),
		rotation.NewEngine(log),
		c.RotationRepo,
		log,
	)
	c.SummaryService = summary.NewService(c.RegimeRepo, c.RankingRepo, c.RotationRepo, c.PerfRepo, log)

	c.EvaluationService = evaluation.NewService(
		c.RegimeService,
		c.Scorer,
		c.PerfRepo,
		c.RankingEngine,
		c.RankingRepo,
		c.RotationService,
		cfg.Agents,
		log,
	)

	cycles := c.EvaluationService.Cycles(evaluation.Intervals{
		Performance: cfg.PerformanceInterval,
		Ranking:     cfg.RankingInterval,
		Rotation:    cfg.RotationInterval,
		Regime:      cfg.RegimeInterval,
	})
	c.Orchestrator = evaluation.NewOrchestrator(cycles, log)

	c.Scheduler = scheduler.New(log)
	maintenance := scheduler.NewMaintenanceJob(db, c.SignalRepo, c.PerfRepo, c.RegimeRepo, log)
	if err := c.Scheduler.AddJob("0 4 * * *", maintenance); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return c, nil
}

// Close releases the container's resources.
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
