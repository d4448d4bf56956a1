package models

import "time"

// EventType tags events pushed through the delivery gateway.
type EventType string

const (
	EventNewMessage     EventType = "NEW_MESSAGE"
	EventMessageDeleted EventType = "MESSAGE_DELETED"
	EventMessageRead    EventType = "MESSAGE_READ"
	EventTypingStart    EventType = "TYPING_START"
	EventTypingStop     EventType = "TYPING_STOP"
	EventUserOnline     EventType = "USER_ONLINE"
	EventUserOffline    EventType = "USER_OFFLINE"
	EventError          EventType = "ERROR"
)

// Event is a single committed state change (or ephemeral signal) on its way
// to subscribers. TargetUserID routes the event to one user's notification
// channel instead of the room topic; it is never serialized.
type Event struct {
	Type         EventType `json:"type"`
	RoomID       int64     `json:"room_id,omitempty"`
	SenderID     int64     `json:"sender_id,omitempty"`
	Payload      any       `json:"data,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	TargetUserID int64     `json:"-"`
}

// Ephemeral reports whether the event is fire-and-forget: not persisted, not
// fed to the platform event exchange, silently droppable.
func (e Event) Ephemeral() bool {
	switch e.Type {
	case EventTypingStart, EventTypingStop, EventError:
		return true
	}
	return false
}
