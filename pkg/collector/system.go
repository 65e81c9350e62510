package collector

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/cuemby/lookout/pkg/config"
	"github.com/cuemby/lookout/pkg/types"
)

// SystemCollector gathers a telemetry snapshot from the local process and
// the configured services. It implements the telemetry collector and the
// health prober collaborator contracts.
type SystemCollector struct {
	services []config.ServiceConfig
	client   *http.Client

	mu   sync.Mutex
	last *types.MetricSnapshot
}

// NewSystemCollector creates a collector for the configured services
func NewSystemCollector(services []config.ServiceConfig) *SystemCollector {
	return &SystemCollector{
		services: services,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// CollectAll produces one immutable metric snapshot
func (c *SystemCollector) CollectAll(ctx context.Context) (*types.MetricSnapshot, error) {
	snapshot := &types.MetricSnapshot{
		Timestamp: time.Now(),
		System:    c.Snapshot(),
	}

	for _, svc := range c.services {
		snapshot.Services = append(snapshot.Services, c.sampleService(ctx, svc))
	}

	c.mu.Lock()
	c.last = snapshot
	c.mu.Unlock()

	return snapshot, nil
}

// Last returns the most recently collected snapshot, or nil before the
// first collection cycle
func (c *SystemCollector) Last() *types.MetricSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Snapshot returns current process-level resource usage
func (c *SystemCollector) Snapshot() types.SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	sys := types.SystemMetrics{
		MemoryUsedBytes:  m.HeapAlloc,
		MemoryTotalBytes: m.Sys,
		Goroutines:       runtime.NumGoroutine(),
	}
	if m.Sys > 0 {
		sys.MemoryPercent = float64(m.HeapAlloc) / float64(m.Sys) * 100
	}
	return sys
}

// sampleService probes one service health URL and derives its metric
func (c *SystemCollector) sampleService(ctx context.Context, svc config.ServiceConfig) types.ServiceMetric {
	metric := types.ServiceMetric{
		Service:     svc.Name,
		Environment: svc.Environment,
		Status:      "up",
	}

	if svc.HealthURL == "" {
		metric.Status = "unknown"
		return metric
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.HealthURL, nil)
	if err != nil {
		metric.Status = "down"
		return metric
	}

	resp, err := c.client.Do(req)
	metric.ResponseTime = time.Since(start)
	if err != nil {
		metric.Status = "down"
		metric.ErrorRate = 1
		return metric
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		metric.Status = "down"
		metric.ErrorRate = 1
	} else if resp.StatusCode >= 400 {
		metric.Status = "degraded"
	}
	return metric
}

// PerformHealthChecks reports per-service statuses for the health
// aggregator, derived from a fresh sample of each service
func (c *SystemCollector) PerformHealthChecks(ctx context.Context) ([]types.ServiceStatus, error) {
	statuses := make([]types.ServiceStatus, 0, len(c.services))
	for _, svc := range c.services {
		metric := c.sampleService(ctx, svc)
		status := types.ServiceStatus{
			Name:   svc.Name,
			Status: metric.Status,
		}
		if metric.Status != "up" {
			status.Message = "health endpoint returned " + metric.Status
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
