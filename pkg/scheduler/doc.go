/*
Package scheduler runs named jobs on fixed cadences with per-job overlap
protection.

Each registered job gets its own goroutine and ticker. When a tick fires
while the previous invocation of the same job is still running, the tick
is skipped and counted; invocations are never queued and never run
concurrently with themselves. Different jobs are independent and may
overlap freely.

A job that returns an error has the error logged and waits for its next
tick. A job that panics is recovered, logged and likewise retried on the
next tick. One bad collaborator cannot take down the scheduler.

# Usage

	r := scheduler.NewRunner()
	r.Register("telemetry", 30*time.Second, collectTelemetry)
	r.Register("health-probe", time.Minute, probeHealth)
	r.Start()

	// later
	r.Stop() // blocks until in-flight invocations finish

Stop closes the tick loops and waits for running invocations to drain,
so callers can safely tear down the resources jobs depend on afterwards.
*/
package scheduler
