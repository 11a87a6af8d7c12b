package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerTicks(t *testing.T) {
	var calls atomic.Int32
	s := New(10*time.Millisecond, func(context.Context) { calls.Add(1) })
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return calls.Load() >= 3 })
}

func TestSchedulerTrigger(t *testing.T) {
	var calls atomic.Int32
	s := New(time.Hour, func(context.Context) { calls.Add(1) })

	if s.Trigger() {
		t.Fatal("Trigger on a stopped scheduler should report false")
	}

	s.Start(context.Background())
	defer s.Stop()

	if !s.Trigger() {
		t.Fatal("Trigger on a running scheduler should report true")
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestSchedulerStopWaitsAndIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	s := New(5*time.Millisecond, func(context.Context) { calls.Add(1) })
	s.Start(context.Background())
	s.Start(context.Background())

	waitFor(t, func() bool { return calls.Load() >= 1 })
	s.Stop()
	s.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("refresh ran after Stop")
	}
}

func TestSchedulerReset(t *testing.T) {
	var calls atomic.Int32
	s := New(time.Hour, func(context.Context) { calls.Add(1) })
	s.Start(context.Background())
	defer s.Stop()

	s.Reset(10 * time.Millisecond)
	if s.Interval() != 10*time.Millisecond {
		t.Errorf("interval = %v", s.Interval())
	}
	waitFor(t, func() bool { return calls.Load() >= 2 })
}

func TestSchedulerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen atomic.Bool
	s := New(5*time.Millisecond, func(ctx context.Context) { seen.Store(true) })
	s.Start(ctx)
	waitFor(t, seen.Load)
	cancel()
	s.Stop()
}
