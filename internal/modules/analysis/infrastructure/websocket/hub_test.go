package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.DiscardHandler))
}

func TestHub_PublishOnlyMatchingKeyReceives(t *testing.T) {
	h := newTestHub()
	target := &Client{send: make(chan []byte, 1), key: "uploads/a_cat.jpg"}
	other := &Client{send: make(chan []byte, 1), key: "uploads/b_dog.jpg"}
	h.clients[target] = true
	h.clients[other] = true

	go h.Run()
	defer h.Stop()

	h.Publish("uploads/a_cat.jpg", []byte("only-target"))

	select {
	case msg := <-target.send:
		assert.Equal(t, "only-target", string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("target did not receive message")
	}

	select {
	case <-other.send:
		t.Fatal("client watching another key should not receive")
	default:
	}
}

func TestHub_AnalysisCompleted(t *testing.T) {
	h := newTestHub()
	client := &Client{send: make(chan []byte, 1), key: "uploads/a_cat.jpg"}
	h.clients[client] = true

	go h.Run()
	defer h.Stop()

	a := &domain.Analysis{
		ID:        uuid.New(),
		Key:       "uploads/a_cat.jpg",
		Labels:    domain.Labels{{Name: "Cat", Confidence: 98.1}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	h.AnalysisCompleted(a)

	select {
	case msg := <-client.send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, EventAnalysisCompleted, ev.Type)
		require.NotNil(t, ev.Analysis)
		assert.Equal(t, a.ID, ev.Analysis.ID)
		assert.Equal(t, "Cat", ev.Analysis.Labels[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected analysis event")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	slow := &Client{send: make(chan []byte), key: "k"}
	h.clients[slow] = true

	go h.Run()
	defer h.Stop()

	h.Publish("k", []byte("x"))

	select {
	case _, ok := <-slow.send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_StopClosesClientsAndIsIdempotent(t *testing.T) {
	h := newTestHub()
	client := &Client{send: make(chan []byte, 1), key: "k"}
	h.clients[client] = true

	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	h.Stop()
	h.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.send
	assert.False(t, ok)

	// Publishing after stop must not block.
	h.Publish("k", []byte("late"))
}

func TestHub_StopReleasesConnectedClients(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	const key = "uploads/1234_cat.jpg"
	registered := make(chan struct{})
	readDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{hub: hub, conn: conn, send: make(chan []byte, 16), key: key}
		hub.register <- client
		close(registered)
		go client.writePump()
		go func() {
			client.readPump()
			close(readDone)
		}()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client was not registered")
	}
	hub.Stop()

	// writePump answers the closed send channel with a close frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)

	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("readPump still blocked after the hub stopped")
	}
}
