package sim

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Broadcaster receives one frame per tick while the simulation is running.
type Broadcaster interface {
	BroadcastFrame(frame Frame, state State)
}

// Runner drives the engine from a ticker. It starts paused; Start and Stop
// toggle ticking without interrupting a tick in flight, and cancelling the
// context ends the loop entirely.
type Runner struct {
	engine   *Engine
	interval time.Duration
	sink     Broadcaster
	logger   logrus.FieldLogger

	mu      sync.RWMutex
	running bool
}

// NewRunner creates a runner around the engine.
func NewRunner(engine *Engine, interval time.Duration, sink Broadcaster, logger logrus.FieldLogger) *Runner {
	return &Runner{
		engine:   engine,
		interval: interval,
		sink:     sink,
		logger:   logger,
	}
}

// Start lets ticks through.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		r.running = true
		r.logger.Info("simulation started")
	}
}

// Stop pauses ticking before the next iteration. State is preserved.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.running = false
		r.logger.Info("simulation stopped")
	}
}

// Running reports whether ticks are currently being processed.
func (r *Runner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Run blocks until the context is cancelled, ticking the engine at the
// configured interval while started.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.Running() {
				continue
			}
			frame := r.engine.Tick()
			if r.sink != nil {
				r.sink.BroadcastFrame(frame, r.engine.State())
			}
		}
	}
}
