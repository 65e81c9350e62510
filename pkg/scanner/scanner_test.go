package scanner

import (
	"context"
	"testing"

	"github.com/cuemby/lookout/pkg/config"
	"github.com/cuemby/lookout/pkg/types"
)

func scan(t *testing.T, cfg *config.Config) *types.SecurityScanReport {
	t.Helper()
	report, err := NewConfigScanner(cfg).RunScan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return report
}

func issueTitles(report *types.SecurityScanReport) map[string]types.Severity {
	titles := make(map[string]types.Severity)
	for _, issue := range report.Issues {
		titles[issue.Title] = issue.Severity
	}
	return titles
}

func TestScanCleanConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.AuthTokens = map[string]string{"a-long-enough-secret-token": "dashboard"}
	cfg.Automation.DeployURL = "https://ci.example.com/deploy"

	report := scan(t, cfg)
	if len(report.Issues) != 0 {
		t.Errorf("expected clean scan, got %v", report.Issues)
	}
}

func TestScanMissingTokens(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	titles := issueTitles(scan(t, cfg))
	if titles["no auth tokens configured"] != types.SeverityCritical {
		t.Errorf("expected critical finding for missing tokens, got %v", titles)
	}
}

func TestScanWeakToken(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.AuthTokens = map[string]string{"short": "dashboard"}

	titles := issueTitles(scan(t, cfg))
	if titles["weak auth token"] != types.SeverityHigh {
		t.Errorf("expected high finding for weak token, got %v", titles)
	}
}

func TestScanPlaintextEndpoints(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.AuthTokens = map[string]string{"a-long-enough-secret-token": "dashboard"}
	cfg.Automation.DeployURL = "http://ci.example.com/deploy"

	titles := issueTitles(scan(t, cfg))
	if _, ok := titles["endpoint uses plaintext HTTP"]; !ok {
		t.Errorf("expected plaintext HTTP finding, got %v", titles)
	}
}

// Loopback endpoints are fine over plain HTTP
func TestScanLoopbackEndpointAllowed(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.AuthTokens = map[string]string{"a-long-enough-secret-token": "dashboard"}
	cfg.Automation.DeployURL = "http://127.0.0.1:9000/deploy"

	report := scan(t, cfg)
	if len(report.Issues) != 0 {
		t.Errorf("expected no findings for loopback endpoint, got %v", report.Issues)
	}
}

func TestScanWideListenAddr(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.AuthTokens = map[string]string{"a-long-enough-secret-token": "dashboard"}
	cfg.ListenAddr = "0.0.0.0:8080"

	titles := issueTitles(scan(t, cfg))
	if _, ok := titles["gateway listens on all interfaces"]; !ok {
		t.Errorf("expected listen address finding, got %v", titles)
	}
}
