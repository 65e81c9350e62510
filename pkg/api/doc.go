/*
Package api serves Lookout's external surfaces: the websocket endpoint
and the HTTP health, readiness, metrics and read-only query endpoints.

# Endpoints

	GET /ws                     websocket upgrade (authenticated)
	GET /health                 composite health record, 503 if unhealthy
	GET /ready                  readiness probe
	GET /metrics                Prometheus exposition
	GET /api/v1/alerts          open alerts (authenticated)
	GET /api/v1/alerts/history  persisted alerts, acknowledged included (authenticated)
	GET /api/v1/commands        recently dispatched commands (authenticated)
	GET /api/v1/history/<kind>  recent persisted records (authenticated)

# Authentication

Websocket handshakes and the query endpoints require a bearer token,
taken from the Authorization header or the token query parameter (for
browser websocket clients, which cannot set headers). Tokens map to
principals; the principal is attached to the connection and stamped on
every command and acknowledgment it issues. A failed handshake is
answered with HTTP 401 before any upgrade happens.

/health, /ready and /metrics are unauthenticated so load balancers and
scrapers can reach them.
*/
package api
