package collector

import (
	"context"
	"fmt"

	"github.com/cuemby/lookout/pkg/types"
)

// Thresholds holds the limits the threshold detector checks against
type Thresholds struct {
	MemoryPercent    float64
	ServiceErrorRate float64
	ResponseTimeMs   int64
}

// DefaultThresholds returns reasonable alerting limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		MemoryPercent:    90,
		ServiceErrorRate: 0.5,
		ResponseTimeMs:   2000,
	}
}

// ThresholdDetector produces alert candidates by comparing the latest
// metric snapshot against fixed thresholds. Deduplication against open
// alerts is the alert manager's job, not the detector's: the same
// condition is reported on every sweep for as long as it holds.
type ThresholdDetector struct {
	source     func() *types.MetricSnapshot
	thresholds Thresholds
}

// NewThresholdDetector creates a detector reading snapshots from source
func NewThresholdDetector(source func() *types.MetricSnapshot, thresholds Thresholds) *ThresholdDetector {
	return &ThresholdDetector{
		source:     source,
		thresholds: thresholds,
	}
}

// CheckForAlerts returns candidates for every threshold currently exceeded
func (d *ThresholdDetector) CheckForAlerts(ctx context.Context) ([]types.AlertCandidate, error) {
	snapshot := d.source()
	if snapshot == nil {
		// Nothing collected yet
		return nil, nil
	}

	var candidates []types.AlertCandidate

	if d.thresholds.MemoryPercent > 0 && snapshot.System.MemoryPercent > d.thresholds.MemoryPercent {
		candidates = append(candidates, types.AlertCandidate{
			Severity:  types.SeverityHigh,
			Service:   "gateway",
			Condition: "memory_high",
			Message: fmt.Sprintf("memory usage %.1f%% exceeds threshold %.1f%%",
				snapshot.System.MemoryPercent, d.thresholds.MemoryPercent),
		})
	}

	for _, svc := range snapshot.Services {
		if svc.Status == "down" {
			candidates = append(candidates, types.AlertCandidate{
				Severity:  types.SeverityCritical,
				Service:   svc.Service,
				Condition: "service_down",
				Message:   fmt.Sprintf("service %s is unreachable", svc.Service),
			})
			continue
		}

		if d.thresholds.ServiceErrorRate > 0 && svc.ErrorRate >= d.thresholds.ServiceErrorRate {
			candidates = append(candidates, types.AlertCandidate{
				Severity:  types.SeverityHigh,
				Service:   svc.Service,
				Condition: "error_rate_high",
				Message: fmt.Sprintf("error rate %.2f exceeds threshold %.2f",
					svc.ErrorRate, d.thresholds.ServiceErrorRate),
			})
		}

		if d.thresholds.ResponseTimeMs > 0 && svc.ResponseTime.Milliseconds() > d.thresholds.ResponseTimeMs {
			candidates = append(candidates, types.AlertCandidate{
				Severity:  types.SeverityMedium,
				Service:   svc.Service,
				Condition: "response_time_high",
				Message: fmt.Sprintf("response time %dms exceeds threshold %dms",
					svc.ResponseTime.Milliseconds(), d.thresholds.ResponseTimeMs),
			})
		}
	}

	return candidates, nil
}
