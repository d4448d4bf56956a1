package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeValid(t *testing.T) {
	assert.True(t, MessageTypeText.Valid())
	assert.True(t, MessageTypeFile.Valid())
	assert.True(t, MessageTypeImage.Valid())
	assert.False(t, MessageType("VIDEO").Valid())
	assert.False(t, MessageType("").Valid())
}

func TestDisplayContentRedactsDeleted(t *testing.T) {
	msg := Message{Content: "secret", IsDeleted: true}

	assert.Equal(t, DeletedPlaceholder, msg.DisplayContent())
	assert.Equal(t, "secret", Message{Content: "secret"}.DisplayContent())
}

func TestViewNeverLeaksDeletedContent(t *testing.T) {
	now := time.Now()
	deleter := int64(1)
	msg := Message{
		ID: 9, RoomID: 5, SenderID: 1, Content: "secret",
		Type: MessageTypeText, IsDeleted: true, DeletedAt: &now, DeletedByID: &deleter,
	}

	raw, err := json.Marshal(msg.View())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), DeletedPlaceholder)
}

func TestRawRowOmitsContentFromJSON(t *testing.T) {
	raw, err := json.Marshal(Message{ID: 9, Content: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestSummaryUsesRedactedContent(t *testing.T) {
	msg := Message{ID: 9, Content: "secret", IsDeleted: true}

	summary := msg.Summary("alice")

	assert.Equal(t, DeletedPlaceholder, summary.Content)
	assert.Equal(t, "alice", summary.SenderName)
	assert.True(t, summary.IsDeleted)
}

func TestEventEphemeral(t *testing.T) {
	assert.True(t, Event{Type: EventTypingStart}.Ephemeral())
	assert.True(t, Event{Type: EventTypingStop}.Ephemeral())
	assert.True(t, Event{Type: EventError}.Ephemeral())
	assert.False(t, Event{Type: EventNewMessage}.Ephemeral())
	assert.False(t, Event{Type: EventMessageRead}.Ephemeral())
	assert.False(t, Event{Type: EventUserOnline}.Ephemeral())
}

func TestRoomMembership(t *testing.T) {
	room := Room{ID: 3, UserAID: 7, UserBID: 42}

	assert.True(t, room.ContainsUser(7))
	assert.True(t, room.ContainsUser(42))
	assert.False(t, room.ContainsUser(99))
	assert.Equal(t, int64(42), room.OtherUser(7))
	assert.Equal(t, int64(7), room.OtherUser(42))
}

func TestUserDisplayNameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "alice", User{Name: "alice", Email: "a@x"}.DisplayName())
	assert.Equal(t, "a@x", User{Email: "a@x"}.DisplayName())
}
