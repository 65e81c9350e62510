/*
Package types defines the shared data structures passed between
Lookout's packages: alerts and their lifecycle states, metric
snapshots, deployment commands, health records and persisted snapshot
records.

Types here carry no behavior beyond small helpers (severity ordering,
alert fingerprints, the health status predicate) so that any package
can depend on them without pulling in the rest of the gateway.
*/
package types
