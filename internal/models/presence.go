package models

import "time"

// PresenceStatus is the best-effort online indicator for a user. One row per
// user, created lazily on the first presence event.
type PresenceStatus struct {
	ID       int64     `db:"id" json:"id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	IsOnline bool      `db:"is_online" json:"is_online"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}
