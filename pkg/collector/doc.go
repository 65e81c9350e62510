/*
Package collector provides the built-in telemetry collaborators: the
system collector, the threshold alert detector, the performance
analyzer and the file log summarizer.

# SystemCollector

Gathers one immutable MetricSnapshot per cycle: process-level resource
usage from the Go runtime plus a sample of every configured service's
health URL. Response status maps to a service status: 2xx/3xx is up,
4xx degraded, 5xx or a transport error down. The collector also
implements the health prober contract, so the aggregator reuses the
same sampling.

# ThresholdDetector

Turns the most recent snapshot into alert candidates by comparing
against fixed thresholds (memory percent, service error rate, response
time, service down). The detector is stateless and may report the same
condition every cycle; deduplication is the alert manager's job. Before
the first collection cycle it reports nothing.

# PerformanceAnalyzer

Aggregates the last N persisted snapshots into per-service average and
p95 response times and average error rates, flagging services that
cross the error-rate or latency thresholds. It reads through the
storage layer, so gaps from failed persists simply shrink the window.

# FileLogSummarizer

Tails *.log files under a configured directory and counts total, error
and warning lines per service (one file per service, named by
basename). Only the last megabyte of each file is read per cycle and
unreadable files are skipped, so log rotation cannot fail the job.
*/
package collector
