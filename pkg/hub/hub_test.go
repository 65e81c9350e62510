package hub

import (
	"encoding/json"
	"testing"
)

// newTestClient creates a registered client without a websocket
// connection. Broadcast, Send and Join never touch the connection, so
// tests can read delivered frames straight from the send channel.
func newTestClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := NewClient(h, nil, "tester")
	if !h.Register(c) {
		t.Fatal("register failed on open hub")
	}
	return c
}

func received(t *testing.T, c *Client) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return events
			}
			var e Event
			if err := json.Unmarshal(data, &e); err != nil {
				t.Fatalf("malformed frame: %v", err)
			}
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestBroadcastReachesAllTopicMembers(t *testing.T) {
	h := NewHub(nil)
	a := newTestClient(t, h)
	b := newTestClient(t, h)
	outsider := newTestClient(t, h)

	h.Join(a, "metrics:api")
	h.Join(b, "metrics:api")

	h.Broadcast("metrics:api", Event{Type: "metrics:update"})

	if got := received(t, a); len(got) != 1 {
		t.Errorf("member a got %d events, want 1", len(got))
	}
	if got := received(t, b); len(got) != 1 {
		t.Errorf("member b got %d events, want 1", len(got))
	}
	if got := received(t, outsider); len(got) != 0 {
		t.Errorf("non-member got %d events, want 0", len(got))
	}
}

// A client joined to a topic twice must still receive each broadcast once
func TestJoinIsIdempotent(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)

	h.Join(c, "metrics:api")
	h.Join(c, "metrics:api")

	if n := h.TopicMembers("metrics:api"); n != 1 {
		t.Errorf("expected 1 member after double join, got %d", n)
	}

	h.Broadcast("metrics:api", Event{Type: "metrics:update"})
	if got := received(t, c); len(got) != 1 {
		t.Errorf("expected exactly 1 delivery after double join, got %d", len(got))
	}
}

func TestBroadcastToEmptyTopicIsNoOp(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)

	h.Broadcast("metrics:nobody", Event{Type: "metrics:update"})

	if got := received(t, c); len(got) != 0 {
		t.Errorf("expected no deliveries, got %d", len(got))
	}
}

// TopicAll reaches every connection without an explicit join
func TestBroadcastAllReachesEveryConnection(t *testing.T) {
	h := NewHub(nil)
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	h.Broadcast(TopicAll, Event{Type: "infrastructure:health"})

	for name, c := range map[string]*Client{"a": a, "b": b} {
		if got := received(t, c); len(got) != 1 {
			t.Errorf("connection %s got %d events, want 1", name, len(got))
		}
	}
}

func TestUnregisterLeavesAllTopics(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)
	other := newTestClient(t, h)

	h.Join(c, "metrics:api")
	h.Join(c, "alerts:high")
	h.Join(other, "metrics:api")

	h.Unregister(c)

	if n := h.TopicMembers("metrics:api"); n != 1 {
		t.Errorf("expected 1 remaining member, got %d", n)
	}
	if n := h.TopicMembers("alerts:high"); n != 0 {
		t.Errorf("expected empty topic after last member left, got %d", n)
	}
	if h.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", h.ConnectionCount())
	}

	// Broadcasts after unregister must not reach the closed client
	h.Broadcast("metrics:api", Event{Type: "metrics:update"})
	if got := received(t, c); len(got) != 0 {
		t.Errorf("unregistered client received %d events", len(got))
	}
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)

	h.Unregister(c)
	h.Unregister(c) // must not panic on double close
}

func TestSendIsTargeted(t *testing.T) {
	h := NewHub(nil)
	target := newTestClient(t, h)
	bystander := newTestClient(t, h)

	if !h.Send(target, Event{Type: "deployment:triggered"}) {
		t.Fatal("send to live connection failed")
	}

	if got := received(t, target); len(got) != 1 {
		t.Errorf("target got %d events, want 1", len(got))
	}
	if got := received(t, bystander); len(got) != 0 {
		t.Errorf("bystander got %d events, want 0", len(got))
	}
}

func TestSendToUnregisteredClientFails(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)
	h.Unregister(c)

	if h.Send(c, Event{Type: "error"}) {
		t.Error("send to unregistered connection reported success")
	}
}

// A connection whose buffer is full is dropped rather than allowed to
// block the broadcast
func TestBroadcastDropsSlowClients(t *testing.T) {
	h := NewHub(nil)
	slow := newTestClient(t, h)
	h.Join(slow, "metrics:api")

	for i := 0; i < sendBufferSize+1; i++ {
		h.Broadcast("metrics:api", Event{Type: "metrics:update"})
	}

	if h.ConnectionCount() != 0 {
		t.Errorf("expected slow client to be dropped, %d connections remain", h.ConnectionCount())
	}
	if n := h.TopicMembers("metrics:api"); n != 0 {
		t.Errorf("dropped client still member of topic, %d members", n)
	}
}

// FIFO: deliveries to one connection preserve broadcast order
func TestDeliveryOrderPerConnection(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)
	h.Join(c, "metrics:api")

	for i := 0; i < 10; i++ {
		h.Broadcast("metrics:api", Event{Type: "metrics:update", Payload: i})
	}

	events := received(t, c)
	if len(events) != 10 {
		t.Fatalf("expected 10 deliveries, got %d", len(events))
	}
	for i, e := range events {
		var got int
		data, _ := json.Marshal(e.Payload)
		if err := json.Unmarshal(data, &got); err != nil || got != i {
			t.Fatalf("delivery %d out of order: got payload %v", i, e.Payload)
		}
	}
}

func TestClosedHubRejectsRegistration(t *testing.T) {
	h := NewHub(nil)
	existing := newTestClient(t, h)

	h.Close()

	if h.Register(NewClient(h, nil, "late")) {
		t.Error("closed hub accepted a new connection")
	}
	if h.ConnectionCount() != 0 {
		t.Errorf("expected all connections closed, got %d", h.ConnectionCount())
	}

	// existing client's channel must be closed
	if _, ok := <-existing.send; ok {
		t.Error("expected closed send channel after hub close")
	}
}

func TestJoinAfterUnregisterIsIgnored(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(t, h)
	h.Unregister(c)

	h.Join(c, "metrics:api")
	if n := h.TopicMembers("metrics:api"); n != 0 {
		t.Errorf("unregistered client joined a topic, %d members", n)
	}
}
