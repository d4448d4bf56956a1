package ws

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestHubTracksRoomSubscribers(t *testing.T) {
	h := NewHub()
	connA := &websocket.Conn{}
	connB := &websocket.Conn{}

	h.Add(1, connA, ConnInfo{ConnID: "a", UserID: 7, ConnectedAt: time.Now()})
	h.Add(1, connB, ConnInfo{ConnID: "b", UserID: 42, ConnectedAt: time.Now()})
	assert.Equal(t, 2, h.RoomSize(1))
	assert.Equal(t, 0, h.RoomSize(2))

	h.Remove(1, connA)
	assert.Equal(t, 1, h.RoomSize(1))

	h.Remove(1, connB)
	assert.Equal(t, 0, h.RoomSize(1))
}

func TestHubRemoveUnknownConnIsNoop(t *testing.T) {
	h := NewHub()
	conn := &websocket.Conn{}

	h.Remove(9, conn)

	assert.Equal(t, 0, h.RoomSize(9))
}

func TestHubTracksUserChannels(t *testing.T) {
	h := NewHub()
	first := &websocket.Conn{}
	second := &websocket.Conn{}

	h.Add(1, first, ConnInfo{ConnID: "a", UserID: 7})
	h.Add(2, second, ConnInfo{ConnID: "b", UserID: 7})

	h.mu.RLock()
	assert.Len(t, h.users[7], 2)
	h.mu.RUnlock()

	h.Remove(1, first)
	h.mu.RLock()
	assert.Len(t, h.users[7], 1)
	h.mu.RUnlock()

	h.Remove(2, second)
	h.mu.RLock()
	_, stillTracked := h.users[7]
	h.mu.RUnlock()
	assert.False(t, stillTracked)
}
