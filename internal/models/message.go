package models

import "time"

// MessageType classifies a message payload.
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeFile  MessageType = "FILE"
	MessageTypeImage MessageType = "IMAGE"
)

// Valid reports whether the type is one of the known variants.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeFile, MessageTypeImage:
		return true
	}
	return false
}

// DeletedPlaceholder replaces the content of soft-deleted messages on every
// read path.
const DeletedPlaceholder = "User deleted message"

// Message is a single entry in a room's history. Total order within a room
// is (CreatedAt, ID) ascending.
type Message struct {
	ID          int64       `db:"id" json:"id"`
	RoomID      int64       `db:"room_id" json:"room_id"`
	SenderID    int64       `db:"sender_id" json:"sender_id"`
	Content     string      `db:"content" json:"-"`
	Type        MessageType `db:"type" json:"type"`
	FileURL     *string     `db:"file_url" json:"file_url,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	IsRead      bool        `db:"is_read" json:"is_read"`
	IsDeleted   bool        `db:"is_deleted" json:"is_deleted"`
	DeletedAt   *time.Time  `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedByID *int64      `db:"deleted_by_id" json:"deleted_by_id,omitempty"`
}

// DisplayContent returns the stored content, or the fixed placeholder once
// the message has been deleted.
func (m Message) DisplayContent() string {
	if m.IsDeleted {
		return DeletedPlaceholder
	}
	return m.Content
}

// View builds the outbound shape of the message. Redaction happens here:
// callers marshal views, never raw rows, so deleted content cannot leak.
// Sender and DeletedBy summaries are attached by the caller.
func (m Message) View() MessageView {
	return MessageView{
		ID:        m.ID,
		RoomID:    m.RoomID,
		Content:   m.DisplayContent(),
		Type:      m.Type,
		FileURL:   m.FileURL,
		CreatedAt: m.CreatedAt,
		IsRead:    m.IsRead,
		IsDeleted: m.IsDeleted,
		DeletedAt: m.DeletedAt,
	}
}

// Summary builds the room-listing preview of the message.
func (m Message) Summary(senderName string) MessageSummary {
	return MessageSummary{
		ID:         m.ID,
		Content:    m.DisplayContent(),
		SenderName: senderName,
		CreatedAt:  m.CreatedAt,
		IsDeleted:  m.IsDeleted,
	}
}

// MessageView is the delivery-ready shape returned by the facade and pushed
// through the gateway.
type MessageView struct {
	ID        int64        `json:"id"`
	RoomID    int64        `json:"room_id"`
	Sender    UserSummary  `json:"sender"`
	Content   string       `json:"content"`
	Type      MessageType  `json:"type"`
	FileURL   *string      `json:"file_url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	IsRead    bool         `json:"is_read"`
	IsDeleted bool         `json:"is_deleted"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
	DeletedBy *UserSummary `json:"deleted_by,omitempty"`
}
