/*
Package gateway is Lookout's composition root: it wires the scheduler,
the hub, the alert manager, the dispatcher and the persistence store
together and routes data between them.

# Architecture

	┌─────────────────────── GATEWAY ────────────────────────┐
	│                                                         │
	│  Scheduled jobs (pkg/scheduler)                          │
	│  ┌───────────┬────────────┬──────────────┐              │
	│  │ telemetry │ alert-sweep│ health-probe │  ...         │
	│  └─────┬─────┴──────┬─────┴──────┬───────┘              │
	│        ▼            ▼            ▼                      │
	│  Collaborators (Collector, Detector, Prober, Scanner,   │
	│                 LogAggregator, Analyzer)                 │
	│        │                                                 │
	│        ├──────────► Store (pkg/storage, best-effort)     │
	│        │                                                 │
	│        └──────────► Hub (pkg/hub, topic fan-out)         │
	│                                                         │
	│  Inbound websocket messages                              │
	│  ┌──────────────┬──────────────┬───────────────────┐    │
	│  │ subscribe:*  │ trigger:*    │ alert:acknowledge │    │
	│  └──────┬───────┴──────┬───────┴─────────┬─────────┘    │
	│         ▼              ▼                 ▼              │
	│     hub.Join     dispatcher         alert manager       │
	└─────────────────────────────────────────────────────────┘

# Scheduled Jobs

Each collaborator gets one named job. A collaborator left unconfigured
disables its job with a warning instead of failing startup:

  - telemetry: collect a snapshot, persist it, broadcast full snapshot
    to the global topic and per-service slices to service/env topics
  - alert-sweep: deduplicate detector candidates into open alerts,
    persist and fan out new ones
  - health-probe: recompute the composite health record, announce it
  - performance-analysis: summarize persisted snapshots, announce
  - security-scan: persist every report, broadcast only when issues
    were found
  - log-summary: persist and announce the periodic log summary

Persistence inside jobs is best-effort. A failed write is logged and
counted but the broadcast still goes out; the live feed takes
precedence over audit durability.

# Topics

Topic names are derived, never configured:

	metrics:<service>        per-service telemetry
	env:<environment>        per-environment telemetry
	alerts:<severity>        new alerts of one severity
	alerts:service:<service> new alerts for one service

A subscribe:alerts request may name one severity, a minSeverity floor
(joins every severity topic at or above it), or both.
	deployments:<project>    deployment activity per project
	deployments:env:<env>    deployment activity per environment
	all                      implicit global topic

# Shutdown

Shutdown stops components in dependency order: the scheduler first so
in-flight job invocations drain, then the dispatcher so in-flight
command executions persist their terminal status, then the hub so every
connection is closed, then the store. An in-flight telemetry write or
command persist is never aborted mid-flight.

# See Also

  - pkg/hub for delivery semantics
  - pkg/alerts for the alert lifecycle
  - pkg/dispatch for command handling
*/
package gateway
