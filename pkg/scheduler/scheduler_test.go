package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerRunsRegisteredJob(t *testing.T) {
	r := NewRunner()

	var runs int32
	r.Register("counter", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if atomic.LoadInt32(&runs) < 2 {
		t.Errorf("expected at least 2 invocations, got %d", runs)
	}
}

// A tick firing during a running invocation is skipped, never queued:
// invocations of the same job must not overlap
func TestRunnerSkipsOverlappingTicks(t *testing.T) {
	r := NewRunner()

	var concurrent, maxConcurrent, runs int32
	r.Register("slow", 10*time.Millisecond, func(ctx context.Context) error {
		cur := atomic.AddInt32(&concurrent, 1)
		for {
			prev := atomic.LoadInt32(&maxConcurrent)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxConcurrent, prev, cur) {
				break
			}
		}
		time.Sleep(55 * time.Millisecond) // spans several ticks
		atomic.AddInt32(&concurrent, -1)
		atomic.AddInt32(&runs, 1)
		return nil
	})

	r.Start()
	time.Sleep(150 * time.Millisecond)
	r.Stop()

	if max := atomic.LoadInt32(&maxConcurrent); max != 1 {
		t.Errorf("expected at most 1 concurrent invocation, observed %d", max)
	}
	// With a 55ms body and 10ms ticks, most ticks must have been skipped
	if got := atomic.LoadInt32(&runs); got > 4 {
		t.Errorf("expected skipped ticks to cap invocations, got %d", got)
	}
}

// Different jobs are independent: one slow job must not stall another
func TestRunnerJobsAreIndependent(t *testing.T) {
	r := NewRunner()

	block := make(chan struct{})
	r.Register("stuck", 10*time.Millisecond, func(ctx context.Context) error {
		<-block
		return nil
	})

	var fastRuns int32
	r.Register("fast", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&fastRuns, 1)
		return nil
	})

	r.Start()
	time.Sleep(100 * time.Millisecond)
	close(block)
	r.Stop()

	if atomic.LoadInt32(&fastRuns) < 2 {
		t.Errorf("fast job starved by stuck job, only %d runs", fastRuns)
	}
}

// A failing job is retried at its next tick, not disabled
func TestRunnerContinuesAfterError(t *testing.T) {
	r := NewRunner()

	var runs int32
	r.Register("flaky", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("boom")
	})

	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if atomic.LoadInt32(&runs) < 2 {
		t.Errorf("expected failing job to keep running, got %d runs", runs)
	}
}

// A panicking job is recovered and retried; it must not kill the runner
func TestRunnerRecoversPanics(t *testing.T) {
	r := NewRunner()

	var runs int32
	r.Register("panicky", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		panic("unexpected state")
	})

	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if atomic.LoadInt32(&runs) < 2 {
		t.Errorf("expected panicking job to keep running, got %d runs", runs)
	}
}

// Stop must block until in-flight invocations finish
func TestRunnerStopDrainsInFlightWork(t *testing.T) {
	r := NewRunner()

	var finished int32
	started := make(chan struct{}, 1)
	r.Register("draining", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
		return nil
	})

	r.Start()
	<-started
	r.Stop()

	if atomic.LoadInt32(&finished) != 1 {
		t.Error("Stop returned before the in-flight invocation finished")
	}
}

func TestRunnerStopWithoutStart(t *testing.T) {
	r := NewRunner()
	r.Register("never", time.Hour, func(ctx context.Context) error { return nil })
	r.Stop() // must not panic or hang
}

func TestJobNames(t *testing.T) {
	r := NewRunner()
	r.Register("a", time.Hour, func(ctx context.Context) error { return nil })
	r.Register("b", time.Hour, func(ctx context.Context) error { return nil })

	names := r.JobNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected job names: %v", names)
	}
}
