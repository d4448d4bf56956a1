package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/mocks"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
)

type broadcastRecorder struct {
	room []models.Event
	user []models.Event
}

func (b *broadcastRecorder) BroadcastRoom(roomID int64, event models.Event) {
	b.room = append(b.room, event)
}

func (b *broadcastRecorder) SendToUser(userID int64, event models.Event) {
	b.user = append(b.user, event)
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	d := NewDispatcher(&broadcastRecorder{}, nil, "chat", "test", 1, zerolog.Nop())

	d.Enqueue(models.Event{Type: models.EventNewMessage, RoomID: 1})
	d.Enqueue(models.Event{Type: models.EventNewMessage, RoomID: 2})

	assert.Equal(t, 1, len(d.ch))
}

func TestDispatchBroadcastsAndPublishes(t *testing.T) {
	rec := &broadcastRecorder{}
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, "chat_events.new_message", mock.Anything).Return(nil).Once()

	d := NewDispatcher(rec, pub, "chat", "test", 4, zerolog.Nop())
	d.dispatch(context.Background(), models.Event{Type: models.EventNewMessage, RoomID: 5})

	require.Len(t, rec.room, 1)
	assert.Equal(t, int64(5), rec.room[0].RoomID)
	pub.AssertExpectations(t)
}

func TestDispatchEphemeralSkipsExchange(t *testing.T) {
	rec := &broadcastRecorder{}
	pub := new(mocks.PublisherMock)

	d := NewDispatcher(rec, pub, "chat", "test", 4, zerolog.Nop())
	d.dispatch(context.Background(), models.Event{Type: models.EventTypingStart, RoomID: 5})

	require.Len(t, rec.room, 1)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchRoutesTargetedEventsToUser(t *testing.T) {
	rec := &broadcastRecorder{}

	d := NewDispatcher(rec, nil, "chat", "test", 4, zerolog.Nop())
	d.dispatch(context.Background(), models.Event{
		Type: models.EventError, RoomID: 5, TargetUserID: 7,
	})

	assert.Empty(t, rec.room)
	require.Len(t, rec.user, 1)
	assert.Equal(t, models.EventError, rec.user[0].Type)
}

func TestRunDrainsQueue(t *testing.T) {
	rec := &broadcastRecorder{}
	d := NewDispatcher(rec, nil, "chat", "test", 4, zerolog.Nop())

	d.Enqueue(models.Event{Type: models.EventTypingStart, RoomID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(d.ch) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	require.Len(t, rec.room, 1)
}
