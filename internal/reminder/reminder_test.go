package reminder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) live() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (c *fakeClock) fireLive(t *testing.T) {
	t.Helper()
	live := c.live()
	require.Len(t, live, 1, "expected exactly one live timer")
	live[0].fired = true
	live[0].f()
}

type counter struct {
	active atomic.Bool
	ticks  atomic.Int32
	err    error
}

func (c *counter) isActive() bool { return c.active.Load() }

func (c *counter) onTick(ctx context.Context) error {
	c.ticks.Add(1)
	return c.err
}

func newTestScheduler(t *testing.T, c *counter) (*Scheduler, *fakeClock) {
	clk := &fakeClock{}
	s := New(5*time.Minute, c.isActive, c.onTick,
		WithAfterFunc(clk.AfterFunc),
		WithLogger(zaptest.NewLogger(t)),
	)
	return s, clk
}

func TestStartTwice_OneLiveTimer(t *testing.T) {
	c := &counter{}
	c.active.Store(true)
	s, clk := newTestScheduler(t, c)

	s.Start()
	s.Start()

	live := clk.live()
	require.Len(t, live, 1)
	assert.Equal(t, 5*time.Minute, live[0].d)

	clk.fireLive(t)
	assert.Equal(t, int32(1), c.ticks.Load())
	assert.Len(t, clk.live(), 1, "should re-arm after a tick")
}

func TestStaleFireIsDropped(t *testing.T) {
	c := &counter{}
	c.active.Store(true)
	s, clk := newTestScheduler(t, c)

	s.Start()
	stale := clk.live()[0]
	s.Restart()

	// A timer that was already firing when Restart stopped it.
	stale.f()
	assert.Zero(t, c.ticks.Load())
	assert.Len(t, clk.live(), 1)
}

func TestInactiveDraftSkipsTickButKeepsTimer(t *testing.T) {
	c := &counter{}
	s, clk := newTestScheduler(t, c)

	s.Start()
	clk.fireLive(t)
	assert.Zero(t, c.ticks.Load())

	c.active.Store(true)
	clk.fireLive(t)
	assert.Equal(t, int32(1), c.ticks.Load())
}

func TestStop(t *testing.T) {
	c := &counter{}
	c.active.Store(true)
	s, clk := newTestScheduler(t, c)

	s.Start()
	pending := clk.live()[0]
	s.Stop()

	assert.False(t, s.Running())
	assert.Empty(t, clk.live())

	pending.f()
	assert.Zero(t, c.ticks.Load())
	assert.Empty(t, clk.live(), "stopped scheduler must not re-arm")
}

func TestTickErrorIsSwallowed(t *testing.T) {
	c := &counter{err: errors.New("channel gone")}
	c.active.Store(true)
	s, clk := newTestScheduler(t, c)

	s.Start()
	clk.fireLive(t)
	clk.fireLive(t)

	assert.Equal(t, int32(2), c.ticks.Load())
	assert.True(t, s.Running())
}

func TestTickMayRestartScheduler(t *testing.T) {
	clk := &fakeClock{}
	var s *Scheduler
	ticks := 0
	s = New(time.Minute, func() bool { return true }, func(ctx context.Context) error {
		ticks++
		s.Restart()
		return nil
	}, WithAfterFunc(clk.AfterFunc))

	s.Start()
	clk.fireLive(t)

	assert.Equal(t, 1, ticks)
	assert.Len(t, clk.live(), 1)
}

func TestRealTimerFires(t *testing.T) {
	fired := make(chan struct{}, 8)
	s := New(10*time.Millisecond, func() bool { return true }, func(ctx context.Context) error {
		fired <- struct{}{}
		return nil
	})
	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reminder")
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(0, func() bool { return false }, func(context.Context) error { return nil })
	assert.Equal(t, DefaultInterval, s.Interval())
}
