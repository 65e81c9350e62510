package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cuemby/lookout/pkg/types"
)

// RecentFunc reads recently persisted records of a kind, newest first
type RecentFunc func(kind types.RecordKind, limit int) ([]*types.Record, error)

// PerformanceAnalyzer aggregates persisted metric snapshots into a
// per-service performance summary with threshold findings
type PerformanceAnalyzer struct {
	recent RecentFunc
	window int // number of snapshots to analyze
}

// NewPerformanceAnalyzer creates an analyzer over persisted snapshots
func NewPerformanceAnalyzer(recent RecentFunc, window int) *PerformanceAnalyzer {
	if window <= 0 {
		window = 20
	}
	return &PerformanceAnalyzer{
		recent: recent,
		window: window,
	}
}

// Analyze summarizes the most recent persisted metric snapshots
func (a *PerformanceAnalyzer) Analyze(ctx context.Context) (*types.PerformanceAnalysis, error) {
	records, err := a.recent(types.RecordKindMetrics, a.window)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric history: %w", err)
	}

	analysis := &types.PerformanceAnalysis{
		Timestamp: time.Now(),
		Window:    fmt.Sprintf("last %d snapshots", len(records)),
	}
	if len(records) == 0 {
		return analysis, nil
	}

	// Persisted payloads round-trip through JSON; decode them back into
	// snapshots before aggregating
	type sample struct {
		responseTimes []time.Duration
		errorRates    []float64
	}
	samples := make(map[string]*sample)

	for _, record := range records {
		data, err := json.Marshal(record.Payload)
		if err != nil {
			continue
		}
		var snapshot types.MetricSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			continue
		}

		for _, svc := range snapshot.Services {
			s, ok := samples[svc.Service]
			if !ok {
				s = &sample{}
				samples[svc.Service] = s
			}
			s.responseTimes = append(s.responseTimes, svc.ResponseTime)
			s.errorRates = append(s.errorRates, svc.ErrorRate)
		}
	}

	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := samples[name]

		perf := types.ServicePerformance{Service: name}

		var total time.Duration
		for _, rt := range s.responseTimes {
			total += rt
		}
		perf.AvgResponseTime = total / time.Duration(len(s.responseTimes))

		sorted := append([]time.Duration(nil), s.responseTimes...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		perf.P95ResponseTime = sorted[(len(sorted)*95)/100]

		var errSum float64
		for _, er := range s.errorRates {
			errSum += er
		}
		perf.ErrorRate = errSum / float64(len(s.errorRates))

		analysis.Services = append(analysis.Services, perf)

		if perf.ErrorRate > 0.1 {
			analysis.Findings = append(analysis.Findings, types.PerformanceIssue{
				Service: name,
				Metric:  "error_rate",
				Detail:  fmt.Sprintf("average error rate %.2f over window", perf.ErrorRate),
			})
		}
		if perf.P95ResponseTime > time.Second {
			analysis.Findings = append(analysis.Findings, types.PerformanceIssue{
				Service: name,
				Metric:  "p95_response_time",
				Detail:  fmt.Sprintf("p95 response time %v over window", perf.P95ResponseTime.Round(time.Millisecond)),
			})
		}
	}

	return analysis, nil
}
