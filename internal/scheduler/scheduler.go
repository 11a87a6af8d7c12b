// Package scheduler runs a refresh function on an interval and on demand.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler owns the periodic refresh timer. It is started and stopped
// explicitly and its interval can be changed while running.
type Scheduler struct {
	refresh func(context.Context)

	mu       sync.Mutex
	interval time.Duration
	ticker   *time.Ticker
	trigger  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(interval time.Duration, refresh func(context.Context)) *Scheduler {
	return &Scheduler{
		refresh:  refresh,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})

	zap.L().Info("Refresh scheduler started", zap.Duration("interval", s.interval))
	go s.loop(ctx, s.ticker, s.done)
}

func (s *Scheduler) loop(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		case <-s.trigger:
			s.refresh(ctx)
		}
	}
}

// Stop halts the timer and waits for an in-flight refresh to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done, ticker := s.cancel, s.done, s.ticker
	s.cancel, s.done, s.ticker = nil, nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	ticker.Stop()
	cancel()
	<-done
	zap.L().Info("Refresh scheduler stopped")
}

// Reset changes the interval and restarts the countdown.
func (s *Scheduler) Reset(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	if s.ticker != nil {
		s.ticker.Reset(interval)
		zap.L().Info("Refresh scheduler reset", zap.Duration("interval", interval))
	}
}

// Trigger requests an immediate refresh. Requests made while one is already
// pending collapse into it. It reports false if the scheduler is not running.
func (s *Scheduler) Trigger() bool {
	s.mu.Lock()
	running := s.cancel != nil
	s.mu.Unlock()
	if !running {
		return false
	}

	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return true
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}
