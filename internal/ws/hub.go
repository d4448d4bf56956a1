package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/observability"
)

// Hub tracks active websocket connections by room topic and by user. All
// writes flow through the gateway dispatcher's single goroutine, so
// per-connection write serialization holds without extra locking.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*websocket.Conn]ConnInfo
	users map[int64]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*websocket.Conn]ConnInfo),
		users: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

// Add registers a connection under its room topic and its user channel.
func (h *Hub) Add(roomID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[roomID][conn] = info
	if _, ok := h.users[info.UserID]; !ok {
		h.users[info.UserID] = make(map[*websocket.Conn]struct{})
	}
	h.users[info.UserID][conn] = struct{}{}
}

// Remove drops a connection from both indexes.
func (h *Hub) Remove(roomID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		info, tracked := conns[conn]
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
		if tracked {
			if userConns, ok := h.users[info.UserID]; ok {
				delete(userConns, conn)
				if len(userConns) == 0 {
					delete(h.users, info.UserID)
				}
			}
		}
	}
}

// BroadcastRoom pushes the event to every subscriber of the room topic.
func (h *Hub) BroadcastRoom(roomID int64, event models.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[roomID]))
	for conn := range h.rooms[roomID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.write(roomID, conns, event)
}

// SendToUser pushes the event to every connection of one user, the per-user
// notification and error channel.
func (h *Hub) SendToUser(userID int64, event models.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.users[userID]))
	for conn := range h.users[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.write(event.RoomID, conns, event)
}

func (h *Hub) write(roomID int64, conns []*websocket.Conn, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			h.Remove(roomID, conn)
			observability.IncWSEvent("ws_write_error")
		}
	}
}

// RoomSize reports the subscriber count of a room topic.
func (h *Hub) RoomSize(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
