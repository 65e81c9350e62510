package scanner

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cuemby/lookout/pkg/config"
	"github.com/cuemby/lookout/pkg/types"
)

const minTokenLength = 16

// ConfigScanner audits the running configuration and data directory for
// weaknesses. It never reaches out to the network.
type ConfigScanner struct {
	cfg *config.Config
}

// NewConfigScanner creates a scanner over the given configuration
func NewConfigScanner(cfg *config.Config) *ConfigScanner {
	return &ConfigScanner{cfg: cfg}
}

// RunScan performs one scan cycle and returns the full report. An empty
// Issues slice means a clean scan, not a failed one.
func (s *ConfigScanner) RunScan(ctx context.Context) (*types.SecurityScanReport, error) {
	report := &types.SecurityScanReport{
		Timestamp: time.Now(),
		Issues:    []types.SecurityIssue{},
	}

	s.checkTokens(report)
	s.checkEndpoints(report)
	s.checkListenAddr(report)
	s.checkDataDir(report)

	return report, nil
}

func (s *ConfigScanner) checkTokens(report *types.SecurityScanReport) {
	if len(s.cfg.AuthTokens) == 0 {
		report.Issues = append(report.Issues, types.SecurityIssue{
			Severity:    types.SeverityCritical,
			Title:       "no auth tokens configured",
			Description: "every websocket handshake will be rejected; configure at least one token",
			Resource:    "authTokens",
		})
		return
	}

	for token, principal := range s.cfg.AuthTokens {
		if len(token) < minTokenLength {
			report.Issues = append(report.Issues, types.SecurityIssue{
				Severity:    types.SeverityHigh,
				Title:       "weak auth token",
				Description: fmt.Sprintf("token for %q is shorter than %d characters", principal, minTokenLength),
				Resource:    "authTokens",
			})
		}
	}
}

func (s *ConfigScanner) checkEndpoints(report *types.SecurityScanReport) {
	endpoints := map[string]string{
		"automation.deployUrl": s.cfg.Automation.DeployURL,
		"automation.scaleUrl":  s.cfg.Automation.ScaleURL,
	}
	for _, svc := range s.cfg.Services {
		endpoints["services."+svc.Name+".healthUrl"] = svc.HealthURL
	}

	for resource, raw := range endpoints {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			report.Issues = append(report.Issues, types.SecurityIssue{
				Severity:    types.SeverityMedium,
				Title:       "unparseable endpoint URL",
				Description: err.Error(),
				Resource:    resource,
			})
			continue
		}
		if u.Scheme == "http" && !isLoopback(u.Hostname()) {
			report.Issues = append(report.Issues, types.SecurityIssue{
				Severity:    types.SeverityMedium,
				Title:       "endpoint uses plaintext HTTP",
				Description: "commands and health samples to " + u.Host + " travel unencrypted",
				Resource:    resource,
			})
		}
	}
}

func (s *ConfigScanner) checkListenAddr(report *types.SecurityScanReport) {
	addr := s.cfg.ListenAddr
	if strings.HasPrefix(addr, "0.0.0.0:") || strings.HasPrefix(addr, ":") {
		report.Issues = append(report.Issues, types.SecurityIssue{
			Severity:    types.SeverityMedium,
			Title:       "gateway listens on all interfaces",
			Description: "bind to a specific address or front with a reverse proxy",
			Resource:    "listenAddr",
		})
	}
}

func (s *ConfigScanner) checkDataDir(report *types.SecurityScanReport) {
	info, err := os.Stat(s.cfg.DataDir)
	if err != nil {
		// Missing directory is a startup concern, not a security finding
		return
	}
	if info.Mode().Perm()&0o002 != 0 {
		report.Issues = append(report.Issues, types.SecurityIssue{
			Severity:    types.SeverityHigh,
			Title:       "data directory is world-writable",
			Description: "the persistence database can be tampered with by any local user",
			Resource:    s.cfg.DataDir,
		})
	}
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
