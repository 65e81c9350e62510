package gateway

import (
	"context"

	"github.com/cuemby/lookout/pkg/types"
)

// Collector gathers one telemetry snapshot per collection cycle
type Collector interface {
	CollectAll(ctx context.Context) (*types.MetricSnapshot, error)
}

// Detector produces raw alert candidates. Deduplication against open
// alerts is the gateway's responsibility, not the detector's.
type Detector interface {
	CheckForAlerts(ctx context.Context) ([]types.AlertCandidate, error)
}

// Analyzer summarizes service performance over a recent window
type Analyzer interface {
	Analyze(ctx context.Context) (*types.PerformanceAnalysis, error)
}

// Scanner runs one security scan cycle
type Scanner interface {
	RunScan(ctx context.Context) (*types.SecurityScanReport, error)
}

// LogAggregator summarizes recent logs
type LogAggregator interface {
	Summarize(ctx context.Context) (*types.LogSummary, error)
}
