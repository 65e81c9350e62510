package alerts

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

var (
	// ErrNotFound is returned when acknowledging an alert id that does not
	// exist or has already been closed
	ErrNotFound = errors.New("alert not found or already acknowledged")
)

// Manager owns the open-alert map and enforces the dedup invariant:
// at most one open alert per fingerprint (service + condition) at any time.
//
// Alerts are never deleted; acknowledgment closes them and frees the
// fingerprint for future detections.
type Manager struct {
	mu     sync.Mutex
	open   map[string]*types.Alert // fingerprint -> open alert
	byID   map[string]*types.Alert // alert id -> open alert
	closed []*types.Alert          // acknowledged alerts, most recent last
}

// NewManager creates a new alert manager
func NewManager() *Manager {
	return &Manager{
		open: make(map[string]*types.Alert),
		byID: make(map[string]*types.Alert),
	}
}

// Sweep applies one round of detections. A candidate whose fingerprint
// already has an open alert is dropped; the rest become new open alerts.
// Returns the newly opened alerts.
func (m *Manager) Sweep(candidates []types.AlertCandidate) []*types.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	var opened []*types.Alert
	for _, c := range candidates {
		fp := c.Fingerprint()
		if _, exists := m.open[fp]; exists {
			continue
		}

		severity := c.Severity
		if !severity.Valid() {
			severity = types.SeverityMedium
		}

		alert := &types.Alert{
			ID:          uuid.New().String(),
			Fingerprint: fp,
			Severity:    severity,
			Service:     c.Service,
			Condition:   c.Condition,
			Message:     c.Message,
			State:       types.AlertStateOpen,
			DetectedAt:  time.Now(),
		}
		m.open[fp] = alert
		m.byID[alert.ID] = alert
		opened = append(opened, alert)

		metrics.AlertsOpenedTotal.WithLabelValues(string(severity)).Inc()
		logger := log.WithAlertID(alert.ID)
		logger.Info().
			Str("service", alert.Service).
			Str("severity", string(alert.Severity)).
			Msg("alert opened")
	}

	metrics.AlertsOpen.Set(float64(len(m.open)))
	return opened
}

// Acknowledge transitions an open alert to acknowledged and returns the
// closed alert. Acknowledging a nonexistent or already-acknowledged alert
// returns ErrNotFound rather than silently succeeding. The state change is
// atomic: a concurrent acknowledgment of the same alert succeeds exactly
// once.
func (m *Manager) Acknowledge(alertID, principal string) (*types.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.byID[alertID]
	if !ok {
		return nil, ErrNotFound
	}

	now := time.Now()
	alert.State = types.AlertStateAcknowledged
	alert.AcknowledgedBy = principal
	alert.AcknowledgedAt = &now

	delete(m.open, alert.Fingerprint)
	delete(m.byID, alertID)
	m.closed = append(m.closed, alert)

	metrics.AlertsOpen.Set(float64(len(m.open)))
	metrics.AlertsAcknowledgedTotal.Inc()
	logger := log.WithAlertID(alertID)
	logger.Info().Str("by", principal).Msg("alert acknowledged")

	return alert, nil
}

// Open returns all currently open alerts sorted by detection time
func (m *Manager) Open() []*types.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	alerts := make([]*types.Alert, 0, len(m.open))
	for _, a := range m.open {
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].DetectedAt.Before(alerts[j].DetectedAt)
	})
	return alerts
}

// OpenCount returns the number of currently open alerts
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}
