package models

import "time"

// Room is a private conversation between exactly two users. The pair is
// stored canonicalized so that UserAID < UserBID always holds.
type Room struct {
	ID            int64     `db:"id" json:"id"`
	UserAID       int64     `db:"user_a_id" json:"user_a_id"`
	UserBID       int64     `db:"user_b_id" json:"user_b_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
}

// ContainsUser reports whether the user is one of the room's participants.
func (r Room) ContainsUser(userID int64) bool {
	return r.UserAID == userID || r.UserBID == userID
}

// OtherUser returns the peer of the given participant, or 0 for non-members.
func (r Room) OtherUser(userID int64) int64 {
	switch userID {
	case r.UserAID:
		return r.UserBID
	case r.UserBID:
		return r.UserAID
	}
	return 0
}

// RoomView is the API-facing shape of a room, enriched with participant
// summaries and a preview of the latest message.
type RoomView struct {
	ID            int64           `json:"id"`
	UserA         UserSummary     `json:"user_a"`
	UserB         UserSummary     `json:"user_b"`
	CreatedAt     time.Time       `json:"created_at"`
	LastMessageAt time.Time       `json:"last_message_at"`
	LastMessage   *MessageSummary `json:"last_message,omitempty"`
}

// MessageSummary is the compact preview used in room listings. Content is
// always display content, never the stored text of a deleted message.
type MessageSummary struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
	IsDeleted  bool      `json:"is_deleted"`
}
