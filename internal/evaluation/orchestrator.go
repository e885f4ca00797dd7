// Package evaluation runs the periodic meta-evaluation cycles.
package evaluation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Cycle is one independent periodic concern. Cycles never share mutable
// state; they coordinate only through the persistence store.
type Cycle struct {
	Name     string
	Interval time.Duration
	Run      func() error
}

// Orchestrator multiplexes the evaluation cycles, one goroutine each.
// A failure in one cycle never stops the others; stopping is cooperative,
// so an in-flight iteration finishes its persistence writes first.
type Orchestrator struct {
	cycles []Cycle
	log    zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates an orchestrator over the given cycles.
func NewOrchestrator(cycles []Cycle, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cycles: cycles,
		log:    log.With().Str("component", "orchestrator").Logger(),
	}
}

// Start launches all cycles. Calling Start while already running is a no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		o.log.Warn().Msg("Meta-evaluation already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.running = true

	for _, cycle := range o.cycles {
		o.wg.Add(1)
		go o.loop(ctx, cycle)
	}

	o.log.Info().Int("cycles", len(o.cycles)).Msg("Meta-evaluation started")
}

// Stop cancels all cycles and waits for in-flight iterations to complete.
// Calling Stop while not running is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	cancel := o.cancel
	o.mu.Unlock()

	cancel()
	o.wg.Wait()

	o.log.Info().Msg("Meta-evaluation stopped")
}

// Running reports whether the cycles are active.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// RunCycleOnce executes a single iteration of the named cycle synchronously.
// Lets tests and operators single-step a cycle without racing a timer.
func (o *Orchestrator) RunCycleOnce(name string) error {
	for _, cycle := range o.cycles {
		if cycle.Name == name {
			return o.runIteration(cycle)
		}
	}
	return fmt.Errorf("unknown cycle %q", name)
}

// loop drives one cycle: run immediately, then on every tick until cancelled.
func (o *Orchestrator) loop(ctx context.Context, cycle Cycle) {
	defer o.wg.Done()

	log := o.log.With().Str("cycle", cycle.Name).Logger()

	if err := o.runIteration(cycle); err != nil {
		log.Error().Err(err).Msg("Cycle iteration failed")
	}

	ticker := time.NewTicker(cycle.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.runIteration(cycle); err != nil {
				log.Error().Err(err).Msg("Cycle iteration failed")
			}
		}
	}
}

// runIteration executes one iteration with panic containment, so a bug in
// one cycle body can't take down the process or its sibling cycles.
func (o *Orchestrator) runIteration(cycle Cycle) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in cycle %s: %v", cycle.Name, p)
		}
	}()

	return cycle.Run()
}
