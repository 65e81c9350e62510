package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPChecker performs HTTP-based dependency checks
type HTTPChecker struct {
	// DependencyName identifies the dependency in health records
	DependencyName string

	// URL is the full HTTP URL to check (e.g., "http://store:8086/ping")
	URL string

	// IsRequired marks the dependency as required for overall health
	IsRequired bool

	// ExpectedStatusMin is the minimum acceptable HTTP status code (default: 200)
	ExpectedStatusMin int

	// ExpectedStatusMax is the maximum acceptable HTTP status code (default: 399)
	ExpectedStatusMax int

	// Client is the HTTP client to use (allows custom configuration)
	Client *http.Client
}

// NewHTTPChecker creates a new HTTP dependency checker
func NewHTTPChecker(name, url string, required bool, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		DependencyName:    name,
		URL:               url,
		IsRequired:        required,
		ExpectedStatusMin: 200,
		ExpectedStatusMax: 399,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Check performs the HTTP check
func (h *HTTPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return Result{
			Connected: false,
			Message:   fmt.Sprintf("failed to create request: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{
			Connected: false,
			Message:   fmt.Sprintf("request failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	defer resp.Body.Close()

	connected := resp.StatusCode >= h.ExpectedStatusMin && resp.StatusCode <= h.ExpectedStatusMax

	message := fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if !connected {
		message = fmt.Sprintf("%s (expected %d-%d)", message, h.ExpectedStatusMin, h.ExpectedStatusMax)
	}

	return Result{
		Connected: connected,
		Message:   message,
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Name returns the dependency name
func (h *HTTPChecker) Name() string {
	return h.DependencyName
}

// Required reports whether this dependency is required
func (h *HTTPChecker) Required() bool {
	return h.IsRequired
}
