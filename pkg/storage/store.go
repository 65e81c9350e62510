package storage

import (
	"github.com/cuemby/lookout/pkg/types"
)

// Store defines the durable read/write contract the gateway needs.
// Appends are best-effort from the caller's point of view: a failure is
// logged and counted but never blocks a broadcast.
type Store interface {
	// Snapshots
	Append(kind types.RecordKind, payload interface{}) (*types.Record, error)
	Recent(kind types.RecordKind, limit int) ([]*types.Record, error)

	// Alerts
	SaveAlert(alert *types.Alert) error
	ListAlerts(limit int) ([]*types.Alert, error)

	// Commands
	SaveCommand(cmd *types.DeploymentCommand) error
	ListCommands(limit int) ([]*types.DeploymentCommand, error)

	// Utility
	Close() error
}
