// Package reminder re-announces draft status after a period of inactivity.
//
// A Scheduler owns at most one pending timer. Start and Restart both reset it
// to a full interval, Stop cancels it. When the timer fires the scheduler asks
// IsActive and, if the draft is still live, runs OnTick; then it re-arms for
// another interval, so an idle draft is reminded every interval until someone
// acts or the draft ends.
package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = 300 * time.Second

// Timer is the part of *time.Timer the scheduler uses.
type Timer interface {
	Stop() bool
}

// AfterFunc matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	timer    Timer
	gen      uint64
	running  bool

	isActive func() bool
	onTick   func(ctx context.Context) error
	after    AfterFunc
	timeout  time.Duration
	log      *zap.Logger
}

type Option func(*Scheduler)

// WithAfterFunc replaces time.AfterFunc, for tests.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) { s.after = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func New(interval time.Duration, isActive func() bool, onTick func(ctx context.Context) error, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		isActive: isActive,
		onTick:   onTick,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		timeout: 30 * time.Second,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("reminder")
	return s
}

// Start arms the timer for a full interval. Calling it while running resets
// the existing timer instead of adding a second one.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.armLocked()
}

// Restart is Start; it reads better at call sites reacting to activity.
func (s *Scheduler) Restart() { s.Start() }

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

func (s *Scheduler) armLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = s.after(s.interval, func() { s.fire(gen) })
}

func (s *Scheduler) current(gen uint64) bool {
	return s.running && s.gen == gen
}

// fire runs outside the lock so OnTick may call back into the owner of the
// scheduler, including Restart or Stop.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.tick()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.armLocked()
	}
}

func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("reminder tick panicked", zap.Any("panic", r))
		}
	}()

	if !s.isActive() {
		s.log.Debug("no active draft, skipping reminder")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.onTick(ctx); err != nil {
		s.log.Warn("reminder failed", zap.Error(err))
	}
}
