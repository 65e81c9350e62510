package health

import (
	"context"
	"time"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

// Prober returns per-service statuses from the health collaborator
type Prober interface {
	PerformHealthChecks(ctx context.Context) ([]types.ServiceStatus, error)
}

// SystemFunc returns a current system resource snapshot
type SystemFunc func() types.SystemMetrics

// Aggregator composes dependency checks, a system snapshot, and per-service
// statuses into one HealthRecord.
//
// Every probe recomputes the record wholesale; nothing is cached. A failed
// required dependency makes the top-level status "unhealthy". Failures of
// optional dependencies or individual services only degrade the record.
type Aggregator struct {
	checkers  []Checker
	prober    Prober
	system    SystemFunc
	startedAt time.Time
}

// NewAggregator creates a health aggregator
func NewAggregator(checkers []Checker, prober Prober, system SystemFunc) *Aggregator {
	return &Aggregator{
		checkers:  checkers,
		prober:    prober,
		system:    system,
		startedAt: time.Now(),
	}
}

// Probe builds a fresh composite health record
func (a *Aggregator) Probe(ctx context.Context) *types.HealthRecord {
	logger := log.WithComponent("health")

	record := &types.HealthRecord{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(a.startedAt).Round(time.Second).String(),
	}

	for _, checker := range a.checkers {
		result := checker.Check(ctx)

		record.Dependencies = append(record.Dependencies, types.DependencyStatus{
			Name:      checker.Name(),
			Connected: result.Connected,
			Required:  checker.Required(),
			Message:   result.Message,
			Latency:   result.Duration,
		})

		if result.Connected {
			metrics.DependencyUp.WithLabelValues(checker.Name()).Set(1)
		} else {
			metrics.DependencyUp.WithLabelValues(checker.Name()).Set(0)
			if checker.Required() {
				record.Status = "unhealthy"
			} else if record.Status == "healthy" {
				record.Status = "degraded"
			}
			logger.Warn().
				Str("dependency", checker.Name()).
				Bool("required", checker.Required()).
				Str("message", result.Message).
				Msg("dependency unreachable")
		}
	}

	if a.system != nil {
		record.System = a.system()
	}

	if a.prober != nil {
		services, err := a.prober.PerformHealthChecks(ctx)
		if err != nil {
			// Collaborator failure degrades the services sub-field only,
			// never the top-level status
			logger.Error().Err(err).Msg("health prober failed")
			record.Services = []types.ServiceStatus{}
		} else {
			record.Services = services
			for _, svc := range services {
				if svc.Status == "down" && record.Status == "healthy" {
					record.Status = "degraded"
				}
			}
		}
	}

	return record
}
