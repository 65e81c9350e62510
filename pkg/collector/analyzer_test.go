package collector

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/lookout/pkg/types"
)

func metricRecords(snapshots ...*types.MetricSnapshot) RecentFunc {
	return func(kind types.RecordKind, limit int) ([]*types.Record, error) {
		var records []*types.Record
		for _, s := range snapshots {
			records = append(records, &types.Record{
				Kind:      kind,
				Timestamp: s.Timestamp,
				Payload:   s,
			})
		}
		return records, nil
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	a := NewPerformanceAnalyzer(metricRecords(), 0)

	analysis, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analysis.Services) != 0 || len(analysis.Findings) != 0 {
		t.Errorf("expected empty analysis, got %+v", analysis)
	}
}

func TestAnalyzeAggregatesPerService(t *testing.T) {
	a := NewPerformanceAnalyzer(metricRecords(
		&types.MetricSnapshot{Services: []types.ServiceMetric{
			{Service: "api", ResponseTime: 100 * time.Millisecond, ErrorRate: 0},
			{Service: "worker", ResponseTime: 10 * time.Millisecond, ErrorRate: 0},
		}},
		&types.MetricSnapshot{Services: []types.ServiceMetric{
			{Service: "api", ResponseTime: 300 * time.Millisecond, ErrorRate: 0.02},
		}},
	), 0)

	analysis, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(analysis.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(analysis.Services))
	}
	// Sorted by name
	api := analysis.Services[0]
	if api.Service != "api" {
		t.Fatalf("expected api first, got %s", api.Service)
	}
	if api.AvgResponseTime != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", api.AvgResponseTime)
	}
	if api.ErrorRate != 0.01 {
		t.Errorf("expected 0.01 average error rate, got %v", api.ErrorRate)
	}
	if len(analysis.Findings) != 0 {
		t.Errorf("expected no findings for healthy history, got %v", analysis.Findings)
	}
}

func TestAnalyzeFlagsThresholdBreaches(t *testing.T) {
	a := NewPerformanceAnalyzer(metricRecords(
		&types.MetricSnapshot{Services: []types.ServiceMetric{
			{Service: "api", ResponseTime: 3 * time.Second, ErrorRate: 0.5},
		}},
	), 0)

	analysis, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conditions := make(map[string]bool)
	for _, f := range analysis.Findings {
		conditions[f.Metric] = true
	}
	if !conditions["error_rate"] {
		t.Error("expected error_rate finding")
	}
	if !conditions["p95_response_time"] {
		t.Error("expected p95_response_time finding")
	}
}
