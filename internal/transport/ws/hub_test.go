package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Count() = %d, want %d", h.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	h := NewHub()
	defer h.Close()

	a, b := NewConnection(h, ""), NewConnection(h, "admin_1")
	h.Register(a)
	h.Register(b)
	waitForCount(t, h, 2)

	h.Broadcast("report_created", map[string]int{"id": 7})

	for _, c := range []*Connection{a, b} {
		msg := receive(t, c)
		if msg.Type != "report_created" || string(msg.Payload) != `{"id":7}` {
			t.Errorf("message = %s %s", msg.Type, msg.Payload)
		}
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub()
	defer h.Close()

	c := NewConnection(h, "")
	h.Register(c)
	waitForCount(t, h, 1)
	h.Unregister(c)
	waitForCount(t, h, 0)

	if _, ok := <-c.Send; ok {
		t.Error("send channel still open after Unregister")
	}
	// unregistering twice is harmless
	h.Unregister(c)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	h := NewHub()
	c := NewConnection(h, "")
	h.Register(c)
	waitForCount(t, h, 1)

	h.Close()
	h.Close()

	select {
	case _, ok := <-c.Send:
		if ok {
			t.Error("received message instead of close")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after Close")
	}
	// broadcasting after Close must not block
	h.Broadcast("report_created", nil)
}
