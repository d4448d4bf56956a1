package ws

import "time"

// ConnInfo describes one live websocket session.
type ConnInfo struct {
	ConnID      string
	UserID      int64
	IP          string
	RequestID   string
	ConnectedAt time.Time
}
