package websocket

import (
	"path/filepath"
	"testing"
	"time"

	"nivora-be/internal/model"
	"nivora-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "hub.log"))
	hub := NewHub(nil, log)
	go hub.Run()
	return hub
}

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestSendDropsSlowClientWithoutPanic(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()

	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.clientCount(userID) == 1
	}, time.Second, 10*time.Millisecond)

	// Fill the buffer so the next push finds it full.
	client.Send <- []byte("backlog")

	hub.Send(userID, model.Notification{ID: uuid.New(), UserID: userID})

	// The slow client is unregistered and its channel closed exactly once.
	require.Eventually(t, func() bool {
		return hub.clientCount(userID) == 0
	}, time.Second, 10*time.Millisecond)

	<-client.Send // drain the backlog entry
	_, open := <-client.Send
	assert.False(t, open, "hub must close the dropped client's channel")
}

func TestBroadcastDropsSlowClientWithoutDeadlock(t *testing.T) {
	hub := newTestHub(t)

	healthy := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 4)}
	slow := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 1)}
	hub.register <- healthy
	hub.register <- slow

	require.Eventually(t, func() bool {
		return hub.clientCount(healthy.UserID) == 1 && hub.clientCount(slow.UserID) == 1
	}, time.Second, 10*time.Millisecond)

	slow.Send <- []byte("backlog")

	done := make(chan struct{})
	go func() {
		hub.Broadcast(model.Notification{ID: uuid.New()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast did not return; hub deadlocked on a slow client")
	}

	require.Eventually(t, func() bool {
		return hub.clientCount(slow.UserID) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.clientCount(healthy.UserID))

	got := <-healthy.Send
	assert.NotEmpty(t, got)
}
