package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/lookout/pkg/config"
)

func TestCollectAllSamplesServices(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	c := NewSystemCollector([]config.ServiceConfig{
		{Name: "api", Environment: "prod", HealthURL: healthy.URL},
		{Name: "worker", HealthURL: failing.URL},
		{Name: "legacy", HealthURL: "http://127.0.0.1:1"},
	})

	snapshot, err := c.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	if len(snapshot.Services) != 3 {
		t.Fatalf("expected 3 service metrics, got %d", len(snapshot.Services))
	}

	statuses := make(map[string]string)
	for _, svc := range snapshot.Services {
		statuses[svc.Service] = svc.Status
	}
	if statuses["api"] != "up" {
		t.Errorf("expected api up, got %s", statuses["api"])
	}
	if statuses["worker"] != "down" {
		t.Errorf("expected worker down for 500, got %s", statuses["worker"])
	}
	if statuses["legacy"] != "down" {
		t.Errorf("expected legacy down for refused connection, got %s", statuses["legacy"])
	}

	if snapshot.System.Goroutines <= 0 {
		t.Error("expected goroutine count in system metrics")
	}
}

func TestLastBeforeFirstCollection(t *testing.T) {
	c := NewSystemCollector(nil)
	if c.Last() != nil {
		t.Error("expected nil snapshot before first collection")
	}
}

func TestLastReturnsMostRecentSnapshot(t *testing.T) {
	c := NewSystemCollector(nil)

	snapshot, err := c.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if c.Last() != snapshot {
		t.Error("expected Last to return the most recent snapshot")
	}
}

func TestPerformHealthChecks(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	c := NewSystemCollector([]config.ServiceConfig{
		{Name: "api", HealthURL: healthy.URL},
		{Name: "legacy", HealthURL: "http://127.0.0.1:1"},
	})

	statuses, err := c.PerformHealthChecks(context.Background())
	if err != nil {
		t.Fatalf("health checks failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Status != "up" || statuses[1].Status != "down" {
		t.Errorf("unexpected statuses: %+v", statuses)
	}
}
