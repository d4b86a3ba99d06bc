package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := int64(1)
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
				userID = parsed
			}
		}
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)

	return hub, server
}

func dialHub(t *testing.T, server *httptest.Server, userID int64) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + server.URL[4:] + "?user_id=" + strconv.FormatInt(userID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// give the hub time to register the connection
	time.Sleep(100 * time.Millisecond)
	return conn
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, server := newTestHub(t)

	conn := dialHub(t, server, 1)

	hub.mu.RLock()
	connections, exists := hub.connections[1]
	hub.mu.RUnlock()

	if !exists {
		t.Fatal("connection should be registered")
	}
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}

	conn.Close()
	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	_, exists = hub.connections[1]
	hub.mu.RUnlock()

	if exists {
		t.Fatal("connection should be unregistered")
	}
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub, server := newTestHub(t)

	conn := dialHub(t, server, 1)

	hub.Broadcast(1, &Message{
		Type:    "agreement_status",
		Channel: "agreement_status_changed",
		Data:    map[string]interface{}{"status": "broken"},
	})

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	if received.Type != "agreement_status" {
		t.Errorf("expected type 'agreement_status', got %q", received.Type)
	}
	if received.Channel != "agreement_status_changed" {
		t.Errorf("expected channel 'agreement_status_changed', got %q", received.Channel)
	}
	if received.UserID != 1 {
		t.Errorf("expected userID 1, got %d", received.UserID)
	}
}

func TestHub_BroadcastDoesNotCrossUsers(t *testing.T) {
	hub, server := newTestHub(t)

	conn1 := dialHub(t, server, 1)
	conn2 := dialHub(t, server, 2)

	hub.Broadcast(1, &Message{Type: "report_progress", Data: map[string]interface{}{"progress": 50.0}})

	conn1.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received Message
	if err := conn1.ReadJSON(&received); err != nil {
		t.Fatalf("user 1 should receive the message: %v", err)
	}

	conn2.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if err := conn2.ReadJSON(&received); err == nil {
		t.Fatal("user 2 must not receive user 1's message")
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub, server := newTestHub(t)

	conn1 := dialHub(t, server, 1)
	conn2 := dialHub(t, server, 2)

	hub.BroadcastAll(&Message{
		Type:    "agreement_status",
		Channel: "agreement_status_changed",
		Data:    map[string]interface{}{"status": "cancelled"},
	})

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var received Message
		if err := conn.ReadJSON(&received); err != nil {
			t.Fatalf("connection %d failed to read broadcast: %v", i+1, err)
		}
		if received.Type != "agreement_status" {
			t.Errorf("connection %d: expected type 'agreement_status', got %q", i+1, received.Type)
		}
	}
}
