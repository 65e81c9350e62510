package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPChecker performs TCP connection dependency checks
type TCPChecker struct {
	// DependencyName identifies the dependency in health records
	DependencyName string

	// Address is the host:port to connect to
	Address string

	// IsRequired marks the dependency as required for overall health
	IsRequired bool

	// Timeout is the maximum time to wait for the connection
	Timeout time.Duration
}

// NewTCPChecker creates a new TCP dependency checker
func NewTCPChecker(name, address string, required bool, timeout time.Duration) *TCPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPChecker{
		DependencyName: name,
		Address:        address,
		IsRequired:     required,
		Timeout:        timeout,
	}
}

// Check performs the TCP check
func (t *TCPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	dialer := &net.Dialer{Timeout: t.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return Result{
			Connected: false,
			Message:   fmt.Sprintf("connection failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	conn.Close()

	return Result{
		Connected: true,
		Message:   "connection successful",
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Name returns the dependency name
func (t *TCPChecker) Name() string {
	return t.DependencyName
}

// Required reports whether this dependency is required
func (t *TCPChecker) Required() bool {
	return t.IsRequired
}
