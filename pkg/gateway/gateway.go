package gateway

import (
	"context"

	"github.com/cuemby/lookout/pkg/alerts"
	"github.com/cuemby/lookout/pkg/config"
	"github.com/cuemby/lookout/pkg/dispatch"
	"github.com/cuemby/lookout/pkg/health"
	"github.com/cuemby/lookout/pkg/hub"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/scheduler"
	"github.com/cuemby/lookout/pkg/storage"
	"github.com/cuemby/lookout/pkg/types"
)

// Options holds the collaborators and owned components the gateway wires
// together. Hub, Alerts, Runner and Dispatcher are created by New; the
// rest are injected so tests can substitute them.
type Options struct {
	Config     *config.Config
	Store      storage.Store
	Aggregator *health.Aggregator
	Collector  Collector
	Detector   Detector
	Analyzer   Analyzer
	Scanner    Scanner
	Logs       LogAggregator
	Deploy     dispatch.Automation
	Scale      dispatch.Automation
}

// Gateway is the composition root: it owns the hub, the alert manager,
// the command dispatcher and the scheduled jobs, and routes results
// between the collaborators, the store and subscribed connections.
type Gateway struct {
	cfg        *config.Config
	hub        *hub.Hub
	alerts     *alerts.Manager
	dispatcher *dispatch.Dispatcher
	runner     *scheduler.Runner
	aggregator *health.Aggregator
	store      storage.Store

	collector Collector
	detector  Detector
	analyzer  Analyzer
	scanner   Scanner
	logs      LogAggregator
}

// New assembles a gateway from its collaborators and registers the
// scheduled jobs. Call Start to begin collection.
func New(opts Options) *Gateway {
	g := &Gateway{
		cfg:        opts.Config,
		alerts:     alerts.NewManager(),
		runner:     scheduler.NewRunner(),
		aggregator: opts.Aggregator,
		store:      opts.Store,
		collector:  opts.Collector,
		detector:   opts.Detector,
		analyzer:   opts.Analyzer,
		scanner:    opts.Scanner,
		logs:       opts.Logs,
	}

	g.hub = hub.NewHub(g.handleMessage)
	g.dispatcher = dispatch.NewDispatcher(opts.Deploy, opts.Scale, opts.Store, g.hub, opts.Config.Automation.Timeout)

	g.registerJobs()
	return g
}

// Hub returns the subscription registry
func (g *Gateway) Hub() *hub.Hub {
	return g.hub
}

// Aggregator returns the health aggregator
func (g *Gateway) Aggregator() *health.Aggregator {
	return g.aggregator
}

// OpenAlerts returns the currently open alerts
func (g *Gateway) OpenAlerts() []*types.Alert {
	return g.alerts.Open()
}

// History returns recently persisted records of a kind
func (g *Gateway) History(kind types.RecordKind, limit int) ([]*types.Record, error) {
	return g.store.Recent(kind, limit)
}

// AlertHistory returns persisted alerts, acknowledged ones included,
// newest first
func (g *Gateway) AlertHistory(limit int) ([]*types.Alert, error) {
	return g.store.ListAlerts(limit)
}

// CommandHistory returns recently dispatched commands, newest first
func (g *Gateway) CommandHistory(limit int) ([]*types.DeploymentCommand, error) {
	return g.store.ListCommands(limit)
}

// Start launches the scheduled jobs
func (g *Gateway) Start() {
	g.runner.Start()
	logger := log.WithComponent("gateway")
	logger.Info().
		Strs("jobs", g.runner.JobNames()).
		Msg("gateway started")
}

// Shutdown stops the gateway in dependency order: no new scheduled work,
// in-flight job invocations and command dispatches drain, connections
// close, then the store closes. An in-flight telemetry write or command
// persist is never aborted mid-flight.
func (g *Gateway) Shutdown() {
	logger := log.WithComponent("gateway")

	logger.Info().Msg("stopping scheduler")
	g.runner.Stop()

	logger.Info().Msg("draining command dispatches")
	g.dispatcher.Wait()

	logger.Info().Msg("closing connections")
	g.hub.Close()

	if err := g.store.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close store")
	}
	logger.Info().Msg("gateway stopped")
}

// registerJobs wires each configured collaborator into a named scheduled
// job. Missing collaborators disable their job rather than failing.
func (g *Gateway) registerJobs() {
	logger := log.WithComponent("gateway")
	cadence := g.cfg.Jobs

	if g.collector != nil {
		g.runner.Register("telemetry", cadence.Telemetry, g.runTelemetry)
	} else {
		logger.Warn().Msg("no telemetry collector configured, job disabled")
	}

	if g.detector != nil {
		g.runner.Register("alert-sweep", cadence.AlertSweep, g.runAlertSweep)
	} else {
		logger.Warn().Msg("no alert detector configured, job disabled")
	}

	if g.aggregator != nil {
		g.runner.Register("health-probe", cadence.HealthProbe, g.runHealthProbe)
	}

	if g.analyzer != nil {
		g.runner.Register("performance-analysis", cadence.PerformanceAnalysis, g.runPerformanceAnalysis)
	}

	if g.scanner != nil {
		g.runner.Register("security-scan", cadence.SecurityScan, g.runSecurityScan)
	} else {
		logger.Warn().Msg("no security scanner configured, job disabled")
	}

	if g.logs != nil {
		g.runner.Register("log-summary", cadence.LogSummary, g.runLogSummary)
	} else {
		logger.Warn().Msg("no log aggregator configured, job disabled")
	}
}

// persist appends a snapshot record best-effort. Persistence failures are
// logged and counted but never prevent the corresponding broadcast: the
// live observability feed takes precedence over audit durability. Do not
// "fix" this into blocking behavior.
func (g *Gateway) persist(kind types.RecordKind, payload interface{}) {
	if _, err := g.store.Append(kind, payload); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues(string(kind)).Inc()
		logger := log.WithComponent("gateway")
		logger.Error().Err(err).
			Str("kind", string(kind)).
			Msg("failed to persist snapshot")
	}
}

// runTelemetry collects a snapshot, persists it and broadcasts updates
func (g *Gateway) runTelemetry(ctx context.Context) error {
	snapshot, err := g.collector.CollectAll(ctx)
	if err != nil {
		return err
	}

	g.persist(types.RecordKindMetrics, snapshot)

	// Full snapshot to the dashboard, per-service slices to the
	// service and environment topics
	g.hub.Broadcast(hub.TopicAll, hub.Event{Type: "metrics:update", Payload: snapshot})
	for i := range snapshot.Services {
		svc := snapshot.Services[i]
		event := hub.Event{Type: "metrics:update", Payload: svc}
		g.hub.Broadcast(topicServiceMetrics(svc.Service), event)
		if svc.Environment != "" {
			g.hub.Broadcast(topicEnvironment(svc.Environment), event)
		}
	}
	return nil
}

// runAlertSweep asks the detector for candidates, deduplicates them
// through the alert manager and fans new alerts out
func (g *Gateway) runAlertSweep(ctx context.Context) error {
	candidates, err := g.detector.CheckForAlerts(ctx)
	if err != nil {
		return err
	}

	for _, alert := range g.alerts.Sweep(candidates) {
		if err := g.store.SaveAlert(alert); err != nil {
			metrics.PersistFailuresTotal.WithLabelValues("alerts").Inc()
			logger := log.WithAlertID(alert.ID)
			logger.Error().Err(err).Msg("failed to persist alert")
		}

		event := hub.Event{Type: "alert:new", Payload: alert}
		g.hub.Broadcast(topicAlertSeverity(alert.Severity), event)
		g.hub.Broadcast(topicAlertService(alert.Service), event)
		g.hub.Broadcast(hub.TopicAll, event)
	}
	return nil
}

// runHealthProbe recomputes the composite health record and announces it
func (g *Gateway) runHealthProbe(ctx context.Context) error {
	record := g.aggregator.Probe(ctx)
	g.persist(types.RecordKindHealth, record)
	g.hub.Broadcast(hub.TopicAll, hub.Event{Type: "infrastructure:health", Payload: record})
	return nil
}

// runPerformanceAnalysis publishes the periodic performance summary
func (g *Gateway) runPerformanceAnalysis(ctx context.Context) error {
	analysis, err := g.analyzer.Analyze(ctx)
	if err != nil {
		return err
	}
	g.hub.Broadcast(hub.TopicAll, hub.Event{Type: "performance:analysis", Payload: analysis})
	return nil
}

// runSecurityScan persists every scan report but broadcasts only when
// the scan found issues
func (g *Gateway) runSecurityScan(ctx context.Context) error {
	report, err := g.scanner.RunScan(ctx)
	if err != nil {
		return err
	}

	g.persist(types.RecordKindSecurity, report)

	if len(report.Issues) > 0 {
		g.hub.Broadcast(hub.TopicAll, hub.Event{Type: "security:issues", Payload: report})
	}
	return nil
}

// runLogSummary persists and announces the periodic log summary
func (g *Gateway) runLogSummary(ctx context.Context) error {
	summary, err := g.logs.Summarize(ctx)
	if err != nil {
		return err
	}
	g.persist(types.RecordKindLogs, summary)
	g.hub.Broadcast(hub.TopicAll, hub.Event{Type: "logs:summary", Payload: summary})
	return nil
}
