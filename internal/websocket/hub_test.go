package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func mockClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("clients = %d, want 2", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1) // double unregister must not panic
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)

	hub.Broadcast(NewEvent("bill", "settled", "b-42", map[string]any{"category": "Rent"}))

	select {
	case data := <-c.send:
		var got Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "bill_settled" {
			t.Errorf("type = %q, want bill_settled", got.Type)
		}
		if got.ID != "b-42" {
			t.Errorf("id = %q, want b-42", got.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

func TestBroadcastFullBufferDropsEvent(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i <= sendBufferSize; i++ {
		hub.Broadcast(NewEvent("duty", "advanced", "d1", nil))
	}

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			if count != sendBufferSize {
				t.Errorf("delivered = %d, want %d", count, sendBufferSize)
			}
			return
		}
	}
}
