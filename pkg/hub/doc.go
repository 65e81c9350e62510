/*
Package hub provides the websocket connection registry and topic-based
fan-out for Lookout's real-time feed.

The hub tracks live connections and their topic memberships and delivers
broadcast events to topic members. Topics are plain strings with no
independent lifecycle: they appear when the first connection joins and
vanish when the last one leaves.

# Architecture

	┌───────────────────────── HUB ─────────────────────────┐
	│                                                        │
	│  ┌──────────────────────────────────────┐              │
	│  │            Hub                       │              │
	│  │  - connection registry               │              │
	│  │  - topic membership (lazy topics)    │              │
	│  │  - broadcast fan-out                 │              │
	│  └───────────────┬──────────────────────┘              │
	│                  │                                     │
	│        ┌─────────┴──────────┐                          │
	│        ▼                    ▼                          │
	│  ┌───────────┐        ┌───────────┐                    │
	│  │  Client   │        │  Client   │   ...              │
	│  │ ReadPump  │        │ ReadPump  │                    │
	│  │ WritePump │        │ WritePump │                    │
	│  │ send chan │        │ send chan │                    │
	│  └───────────┘        └───────────┘                    │
	└────────────────────────────────────────────────────────┘

Each connection has exactly one writer goroutine (WritePump) draining a
buffered send channel. This gives per-connection FIFO delivery without
any cross-connection coordination.

# Delivery Semantics

Broadcast delivers an event to every member of a topic exactly once per
call, regardless of how many other topics a member has joined.
Broadcasting to a topic with no members is a no-op. The TopicAll topic
reaches every registered connection; connections do not need to join it.

Delivery is best-effort: a connection whose send buffer is full is
dropped from the hub rather than allowed to block the broadcast. A slow
dashboard must never stall the feed for everyone else.

Send delivers a targeted event to a single connection only. Command
results and error events use it so that validation failures and
automation outcomes are never broadcast.

# Connection Lifecycle

 1. HTTP handshake authenticates and upgrades the connection
 2. NewClient + Register add it to the hub
 3. ReadPump parses inbound {type, payload} envelopes and dispatches
    them to the hub handler
 4. WritePump drains the send channel and pings on a timer
 5. On read error or drop, Unregister atomically removes the
    connection from every topic and closes its send channel

Join is idempotent. There is no unsubscribe message; memberships last
for the life of the connection.

# Usage

	h := hub.NewHub(handleMessage)

	// per upgraded connection
	c := hub.NewClient(h, conn, principal)
	if h.Register(c) {
		go c.WritePump()
		go c.ReadPump()
	}

	// fan-out
	h.Broadcast("metrics:api", hub.Event{Type: "metrics:update", Payload: m})

	// targeted
	h.Send(c, hub.Event{Type: "error", Payload: msg})

# See Also

  - pkg/gateway routes inbound messages and owns the topic naming scheme
  - pkg/api performs the authenticated handshake
*/
package hub
