package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPCheckerHealthyEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewHTTPChecker("upstream", server.URL, true, time.Second)
	result := checker.Check(context.Background())

	if !result.Connected {
		t.Errorf("expected connected, got: %s", result.Message)
	}
	if result.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func TestHTTPCheckerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := NewHTTPChecker("upstream", server.URL, true, time.Second)
	result := checker.Check(context.Background())

	if result.Connected {
		t.Errorf("expected disconnected for 500, got: %s", result.Message)
	}
}

func TestHTTPCheckerUnreachable(t *testing.T) {
	checker := NewHTTPChecker("upstream", "http://127.0.0.1:1", true, 200*time.Millisecond)
	result := checker.Check(context.Background())

	if result.Connected {
		t.Error("expected disconnected for refused connection")
	}
}

func TestTCPCheckerListeningPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	checker := NewTCPChecker("redis", ln.Addr().String(), false, time.Second)
	result := checker.Check(context.Background())

	if !result.Connected {
		t.Errorf("expected connected, got: %s", result.Message)
	}
}

func TestTCPCheckerClosedPort(t *testing.T) {
	checker := NewTCPChecker("redis", "127.0.0.1:1", false, 200*time.Millisecond)
	result := checker.Check(context.Background())

	if result.Connected {
		t.Error("expected disconnected for closed port")
	}
}
