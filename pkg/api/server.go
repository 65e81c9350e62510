package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuemby/lookout/pkg/gateway"
	"github.com/cuemby/lookout/pkg/hub"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the websocket endpoint and the HTTP-facing health,
// readiness and metrics surfaces.
type Server struct {
	gateway *gateway.Gateway
	tokens  map[string]string // bearer token -> principal
	mux     *http.ServeMux
	srv     *http.Server
}

// NewServer creates the API server for a gateway
func NewServer(gw *gateway.Gateway, tokens map[string]string) *Server {
	mux := http.NewServeMux()
	s := &Server{
		gateway: gw,
		tokens:  tokens,
		mux:     mux,
	}

	mux.HandleFunc("/ws", s.wsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/v1/alerts", s.alertsHandler)
	mux.HandleFunc("/api/v1/alerts/history", s.alertHistoryHandler)
	mux.HandleFunc("/api/v1/commands", s.commandsHandler)
	mux.HandleFunc("/api/v1/history/", s.historyHandler)

	return s
}

// Start runs the HTTP server until Shutdown or failure
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  120 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting new connections and drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// GetHandler returns the HTTP handler for embedding in tests
func (s *Server) GetHandler() http.Handler {
	return s.mux
}

// authenticate resolves the request's bearer token to a principal.
// Tokens are accepted from the Authorization header or, for browser
// websocket clients that cannot set headers, the token query parameter.
func (s *Server) authenticate(r *http.Request) (string, bool) {
	token := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	} else {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", false
	}

	principal, ok := s.tokens[token]
	return principal, ok
}

// wsHandler authenticates the handshake, upgrades the connection and
// hands it to the hub
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.authenticate(r)
	if !ok {
		// Refuse before upgrading; no websocket is established
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h := s.gateway.Hub()
	client := hub.NewClient(h, conn, principal)
	if !h.Register(client) {
		// Shutting down: no new connections
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	logger := log.WithConnID(client.ID)
	logger.Info().Str("principal", principal).Msg("client connected")

	go client.WritePump()
	go client.ReadPump()
}

// healthHandler serves the full composite health document. Responds 503
// when a required dependency is unreachable.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record := s.gateway.Aggregator().Probe(r.Context())

	statusCode := http.StatusOK
	if !record.Healthy() {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(record)
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// readyHandler reports whether the gateway can serve traffic
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	ready := true

	// Storage: a simple read verifies the database handle
	if _, err := s.gateway.History(types.RecordKindHealth, 1); err != nil {
		checks["storage"] = "error: " + err.Error()
		ready = false
	} else {
		checks["storage"] = "ok"
	}
	checks["hub"] = "ok"

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

// alertsHandler lists currently open alerts
func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authenticate(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts": s.gateway.OpenAlerts(),
	})
}

// alertHistoryHandler lists persisted alerts, acknowledged ones included
func (s *Server) alertHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authenticate(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	alerts, err := s.gateway.AlertHistory(100)
	if err != nil {
		http.Error(w, "failed to read alert history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts": alerts,
	})
}

// commandsHandler lists recently dispatched commands for audit
func (s *Server) commandsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authenticate(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	commands, err := s.gateway.CommandHistory(100)
	if err != nil {
		http.Error(w, "failed to read command history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"commands": commands,
	})
}

// historyHandler returns recently persisted snapshots of one kind
// (metrics, health, security or logs)
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.authenticate(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	kind := types.RecordKind(strings.TrimPrefix(r.URL.Path, "/api/v1/history/"))

	records, err := s.gateway.History(kind, 100)
	if err != nil {
		http.Error(w, "unknown history kind", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"kind":    kind,
		"records": records,
	})
}
