package hub

import (
	"encoding/json"
	"sync"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
)

// TopicAll is the global topic every connection is implicitly joined to.
// System-wide announcements (health, telemetry, security issues) go here.
const TopicAll = "all"

// Event is an outbound message to subscribed clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Handler processes inbound client messages. It is invoked from each
// connection's read pump; implementations must be safe for concurrent use.
type Handler func(c *Client, msgType string, payload json.RawMessage)

// Hub tracks live connections and their topic memberships and fans
// broadcasts out to topic members.
//
// Topics have no independent lifecycle: they are created lazily on first
// join and exist only as the set of current member connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}
	handler Handler
	closed  bool
}

// NewHub creates a new hub
func NewHub(handler Handler) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
		handler: handler,
	}
}

// Register adds a connection to the hub. Returns false if the hub has
// been closed and no longer accepts connections.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c] = struct{}{}
	metrics.ConnectionsActive.Set(float64(len(h.clients)))
	logger := log.WithConnID(c.ID)
	logger.Debug().Str("principal", c.Principal).Msg("connection registered")
	return true
}

// Unregister removes a connection and all of its topic memberships
// atomically, then closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops the client from every topic and closes its channel.
// Caller must hold h.mu.
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	for topic := range c.topics {
		h.leaveLocked(c, topic)
	}
	close(c.send)

	metrics.ConnectionsActive.Set(float64(len(h.clients)))
	logger := log.WithConnID(c.ID)
	logger.Debug().Msg("connection unregistered")
}

// Join adds the connection to a topic. Joining the same topic twice is
// idempotent.
func (h *Hub) Join(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	members, ok := h.topics[topic]
	if !ok {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}
	c.topics[topic] = struct{}{}

	metrics.TopicMembers.WithLabelValues(topic).Set(float64(len(members)))
}

// Leave removes the connection from a topic
func (h *Hub) Leave(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, topic)
}

func (h *Hub) leaveLocked(c *Client, topic string) {
	members, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(members, c)
	delete(c.topics, topic)

	if len(members) == 0 {
		delete(h.topics, topic)
		metrics.TopicMembers.DeleteLabelValues(topic)
	} else {
		metrics.TopicMembers.WithLabelValues(topic).Set(float64(len(members)))
	}
}

// Broadcast delivers an event to every connection currently joined to the
// topic, exactly once per connection per call. Broadcasting to a topic with
// no members is a no-op. The TopicAll topic reaches every connection.
//
// Delivery is best-effort by design: a connection whose send buffer is
// full is dropped rather than allowed to block the broadcast.
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger := log.WithComponent("hub")
		logger.Error().Err(err).Str("topic", topic).Msg("failed to marshal broadcast event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var members map[*Client]struct{}
	if topic == TopicAll {
		members = h.clients
	} else {
		members = h.topics[topic]
	}
	if len(members) == 0 {
		return
	}

	metrics.BroadcastsTotal.WithLabelValues(topic).Inc()

	var dead []*Client
	for c := range members {
		select {
		case c.send <- data:
			metrics.DeliveriesTotal.Inc()
		default:
			// Send buffer full: client is too slow, drop it
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		logger := log.WithConnID(c.ID)
		logger.Warn().Msg("send buffer full, dropping connection")
		h.removeLocked(c)
	}
}

// Send delivers an event to a single connection only. Used for targeted
// command responses and error events. Returns false if the connection is
// gone or its buffer is full; the event is discarded in that case.
func (h *Hub) Send(c *Client, event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		logger := log.WithComponent("hub")
		logger.Error().Err(err).Msg("failed to marshal targeted event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}

	select {
	case c.send <- data:
		metrics.DeliveriesTotal.Inc()
		return true
	default:
		return false
	}
}

// Close stops accepting new connections and disconnects all current ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// ConnectionCount returns the number of registered connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicMembers returns the number of connections joined to a topic
func (h *Hub) TopicMembers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
