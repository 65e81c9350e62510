/*
Package health provides dependency checkers and the composite health
aggregator.

This package implements two checker types, HTTP and TCP, plus an
Aggregator that composes dependency checks, a system resource snapshot
and per-service statuses into one HealthRecord.

# Checkers

All checkers implement:

	type Checker interface {
		Check(ctx context.Context) Result
		Name() string
		Required() bool
	}

HTTP checkers perform a GET and accept responses in a configurable
status range (200-399 by default). TCP checkers only verify that the
address accepts connections; no data is sent. Both honor a per-checker
timeout and report latency in the Result.

# Aggregation Rules

The top-level status is computed wholesale on every probe; nothing is
cached between cycles:

  - every required dependency reachable, all services up → "healthy"
  - a required dependency unreachable → "unhealthy", regardless of
    everything else
  - only optional dependencies unreachable, or some service down →
    "degraded"

A prober (per-service check collaborator) failure degrades the services
sub-field only: the record keeps its dependency-derived top-level
status and an empty services list, and the error is logged. One broken
collaborator must not flip the whole gateway to unhealthy.

The HTTP /health endpoint returns 503 exactly when the record is
"unhealthy".

# Usage

	checkers := []health.Checker{
		health.NewHTTPChecker("auth", "http://auth:9000/health", true, 5*time.Second),
		health.NewTCPChecker("redis", "redis:6379", false, 2*time.Second),
	}
	agg := health.NewAggregator(checkers, prober, systemSnapshot)
	record := agg.Probe(ctx)
*/
package health
