package hub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cuemby/lookout/pkg/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size allowed from peer
	maxMessageSize = 8192

	// Outbound buffer per connection
	sendBufferSize = 64
)

// inbound is the JSON envelope clients send over the websocket
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one live websocket connection and its subscription state.
// The topics set is owned by the hub and mutated only under the hub mutex.
type Client struct {
	ID        string
	Principal string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]struct{}
}

// NewClient creates a client for an upgraded websocket connection.
// The caller must Register it with the hub and start its pumps.
func NewClient(h *Hub, conn *websocket.Conn, principal string) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Principal: principal,
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		topics:    make(map[string]struct{}),
	}
}

// ReadPump pumps inbound messages from the websocket to the hub handler.
// It unregisters the client and closes the connection on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger := log.WithConnID(c.ID)
				logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			// Malformed frame: surface to the caller only, never broadcast
			c.hub.Send(c, Event{
				Type:    "error",
				Payload: map[string]string{"message": "malformed message: expected {type, payload}"},
			})
			continue
		}

		c.hub.handler(c, msg.Type, msg.Payload)
	}
}

// WritePump pumps outbound messages from the send channel to the websocket.
// One writer per connection guarantees FIFO delivery order.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger := log.WithConnID(c.ID)
				logger.Debug().Err(err).Msg("websocket write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
