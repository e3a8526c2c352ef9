package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *captureSink) BroadcastFrame(frame Frame, _ State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestRunnerStartsPaused(t *testing.T) {
	e := newTestEngine(t, DefaultSettings())
	sink := &captureSink{}
	r := NewRunner(e, time.Millisecond, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	assert.False(t, r.Running())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sink.count(), "no frames before Start")
}

func TestRunnerTicksWhileRunning(t *testing.T) {
	e := newTestEngine(t, DefaultSettings())
	sink := &captureSink{}
	r := NewRunner(e, time.Millisecond, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Start()
	require.Eventually(t, func() bool {
		return sink.count() >= 3
	}, time.Second, time.Millisecond)

	r.Stop()
	assert.False(t, r.Running())

	// A few racing ticks may land after Stop; the count must then hold.
	time.Sleep(10 * time.Millisecond)
	settled := sink.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, sink.count())
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	e := newTestEngine(t, DefaultSettings())
	r := NewRunner(e, time.Millisecond, &captureSink{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.Start()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not exit on context cancellation")
	}
}

func TestRunnerFramesAreSequential(t *testing.T) {
	e := newTestEngine(t, DefaultSettings())
	sink := &captureSink{}
	r := NewRunner(e, time.Millisecond, sink, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Start()
	require.Eventually(t, func() bool {
		return sink.count() >= 5
	}, time.Second, time.Millisecond)
	cancel()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, f := range sink.frames {
		assert.Equal(t, i, f.TimeStep)
	}
}
