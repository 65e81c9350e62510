package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
)

// JobFunc is a periodic job invocation. A returned error is logged and the
// job is retried at its next scheduled tick; no backoff is applied here.
type JobFunc func(ctx context.Context) error

// job is one registered periodic job
type job struct {
	name    string
	cadence time.Duration
	fn      JobFunc

	mu      sync.Mutex
	running bool
}

// tryAcquire marks the job running unless an invocation is already in flight
func (j *job) tryAcquire() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return false
	}
	j.running = true
	return true
}

func (j *job) release() {
	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// Runner executes named periodic jobs on independent cadences.
//
// Each job runs on its own ticker. A tick that fires while the previous
// invocation of the same job is still running is skipped, not queued: two
// invocations of the same named job never overlap. Jobs with different names
// are fully independent and may run concurrently.
type Runner struct {
	mu      sync.Mutex
	jobs    []*job
	started bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRunner creates a new job runner
func NewRunner() *Runner {
	return &Runner{
		stopCh: make(chan struct{}),
	}
}

// Register adds a named job. Must be called before Start.
func (r *Runner) Register(name string, cadence time.Duration, fn JobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = append(r.jobs, &job{
		name:    name,
		cadence: cadence,
		fn:      fn,
	})
}

// Start launches one scheduling loop per registered job
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.run(j)
	}
}

// Stop signals all job loops to exit and waits for in-flight invocations
// to finish. No new invocations start after Stop returns.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	close(r.stopCh)
	r.wg.Wait()
}

// run is the scheduling loop for a single job
func (r *Runner) run(j *job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !j.tryAcquire() {
				// Previous invocation still running; skip this tick entirely
				metrics.JobSkipsTotal.WithLabelValues(j.name).Inc()
				logger := log.WithJob(j.name)
				logger.Warn().Msg("previous invocation still running, skipping tick")
				continue
			}
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				defer j.release()
				r.invoke(j)
			}()
		case <-r.stopCh:
			return
		}
	}
}

// invoke runs one job invocation. The caller holds the job's running
// flag for the duration.
func (r *Runner) invoke(j *job) {
	logger := log.WithJob(j.name)
	start := time.Now()
	outcome := "success"

	defer func() {
		if rec := recover(); rec != nil {
			outcome = "panic"
			logger.Error().Interface("panic", rec).Msg("job panicked")
		}
		metrics.JobDuration.WithLabelValues(j.name).Observe(time.Since(start).Seconds())
		metrics.JobRunsTotal.WithLabelValues(j.name, outcome).Inc()
	}()

	if err := j.fn(context.Background()); err != nil {
		outcome = "error"
		logger.Error().Err(err).Msg("job failed, will retry at next tick")
	}
}

// JobNames returns the names of all registered jobs
func (r *Runner) JobNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		names = append(names, j.name)
	}
	return names
}
