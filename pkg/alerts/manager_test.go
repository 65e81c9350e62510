package alerts

import (
	"errors"
	"sync"
	"testing"

	"github.com/cuemby/lookout/pkg/types"
)

func candidate(service, condition string, severity types.Severity) types.AlertCandidate {
	return types.AlertCandidate{
		Severity:  severity,
		Service:   service,
		Condition: condition,
		Message:   condition + " on " + service,
	}
}

func TestSweepOpensNewAlerts(t *testing.T) {
	m := NewManager()

	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "memory_high", types.SeverityHigh),
		candidate("db", "service_down", types.SeverityCritical),
	})

	if len(opened) != 2 {
		t.Fatalf("expected 2 opened alerts, got %d", len(opened))
	}
	if m.OpenCount() != 2 {
		t.Errorf("expected 2 open alerts, got %d", m.OpenCount())
	}
	for _, alert := range opened {
		if alert.State != types.AlertStateOpen {
			t.Errorf("expected open state, got %s", alert.State)
		}
		if alert.ID == "" {
			t.Error("expected alert ID to be set")
		}
	}
}

// The same condition reported every sweep must open exactly one alert
func TestSweepDeduplicatesByFingerprint(t *testing.T) {
	m := NewManager()
	c := candidate("api", "memory_high", types.SeverityHigh)

	first := m.Sweep([]types.AlertCandidate{c})
	if len(first) != 1 {
		t.Fatalf("expected 1 opened alert, got %d", len(first))
	}

	for i := 0; i < 5; i++ {
		again := m.Sweep([]types.AlertCandidate{c})
		if len(again) != 0 {
			t.Fatalf("sweep %d reopened a deduplicated alert", i)
		}
	}
	if m.OpenCount() != 1 {
		t.Errorf("expected 1 open alert, got %d", m.OpenCount())
	}
}

// Same condition on different services is a different fingerprint
func TestSweepFingerprintIncludesService(t *testing.T) {
	m := NewManager()

	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "memory_high", types.SeverityHigh),
		candidate("worker", "memory_high", types.SeverityHigh),
	})

	if len(opened) != 2 {
		t.Fatalf("expected 2 opened alerts, got %d", len(opened))
	}
}

func TestSweepDefaultsInvalidSeverity(t *testing.T) {
	m := NewManager()

	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "weird", types.Severity("catastrophic")),
	})

	if len(opened) != 1 {
		t.Fatalf("expected 1 opened alert, got %d", len(opened))
	}
	if opened[0].Severity != types.SeverityMedium {
		t.Errorf("expected medium severity fallback, got %s", opened[0].Severity)
	}
}

func TestAcknowledge(t *testing.T) {
	m := NewManager()
	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "memory_high", types.SeverityHigh),
	})

	alert, err := m.Acknowledge(opened[0].ID, "oncall@example.com")
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	if alert.State != types.AlertStateAcknowledged {
		t.Errorf("expected acknowledged state, got %s", alert.State)
	}
	if alert.AcknowledgedBy != "oncall@example.com" {
		t.Errorf("expected principal to be recorded, got %q", alert.AcknowledgedBy)
	}
	if alert.AcknowledgedAt == nil {
		t.Error("expected acknowledged timestamp")
	}
	if m.OpenCount() != 0 {
		t.Errorf("expected no open alerts, got %d", m.OpenCount())
	}
}

func TestAcknowledgeUnknownID(t *testing.T) {
	m := NewManager()

	if _, err := m.Acknowledge("no-such-alert", "someone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDoubleAcknowledge(t *testing.T) {
	m := NewManager()
	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "memory_high", types.SeverityHigh),
	})

	if _, err := m.Acknowledge(opened[0].ID, "first"); err != nil {
		t.Fatalf("first acknowledge failed: %v", err)
	}
	if _, err := m.Acknowledge(opened[0].ID, "second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second acknowledge, got %v", err)
	}
}

// Under concurrent acknowledgment exactly one caller wins
func TestConcurrentAcknowledge(t *testing.T) {
	m := NewManager()
	opened := m.Sweep([]types.AlertCandidate{
		candidate("api", "memory_high", types.SeverityHigh),
	})
	id := opened[0].ID

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acknowledge(id, "racer"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 successful acknowledge, got %d", wins)
	}
}

// Acknowledging releases the fingerprint: the condition can reopen
func TestReopenAfterAcknowledge(t *testing.T) {
	m := NewManager()
	c := candidate("api", "memory_high", types.SeverityHigh)

	first := m.Sweep([]types.AlertCandidate{c})
	if _, err := m.Acknowledge(first[0].ID, "oncall"); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	second := m.Sweep([]types.AlertCandidate{c})
	if len(second) != 1 {
		t.Fatalf("expected condition to reopen after acknowledge, got %d alerts", len(second))
	}
	if second[0].ID == first[0].ID {
		t.Error("reopened alert must get a fresh ID")
	}
}

func TestOpenSortedByDetectionTime(t *testing.T) {
	m := NewManager()
	m.Sweep([]types.AlertCandidate{
		candidate("a", "c1", types.SeverityLow),
		candidate("b", "c2", types.SeverityHigh),
		candidate("c", "c3", types.SeverityCritical),
	})

	open := m.Open()
	if len(open) != 3 {
		t.Fatalf("expected 3 open alerts, got %d", len(open))
	}
	for i := 1; i < len(open); i++ {
		if open[i].DetectedAt.Before(open[i-1].DetectedAt) {
			t.Error("open alerts not sorted by detection time")
		}
	}
}
