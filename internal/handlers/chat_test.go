package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/chat"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/mocks"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/repositories"
)

type handlerFixture struct {
	rooms    *mocks.RoomRepositoryMock
	messages *mocks.MessageRepositoryMock
	users    *mocks.UserRepositoryMock
	presence *mocks.PresenceRepositoryMock
	sink     *mocks.SinkRecorder
	router   *gin.Engine
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		rooms:    new(mocks.RoomRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
		presence: new(mocks.PresenceRepositoryMock),
		sink:     new(mocks.SinkRecorder),
	}
	svc := chat.NewService(f.rooms, f.messages, f.users, f.presence, f.sink, zerolog.Nop())
	h := NewChatHandler(svc)

	r := gin.New()
	r.POST("/chat/rooms", h.CreateRoom)
	r.GET("/chat/rooms", h.ListRooms)
	r.GET("/chat/rooms/byUsers", h.GetRoomByUsers)
	r.GET("/chat/rooms/:room_id", h.GetRoom)
	r.POST("/chat/messages", h.PostMessage)
	r.GET("/chat/rooms/:room_id/messages", h.GetMessages)
	r.GET("/chat/rooms/:room_id/history", h.GetHistory)
	r.DELETE("/chat/messages/:message_id", h.DeleteMessage)
	r.POST("/chat/rooms/:room_id/read", h.MarkRead)
	r.GET("/chat/rooms/:room_id/unread-count", h.UnreadCount)
	r.POST("/chat/users/:user_id/online", h.MarkOnline)
	f.router = r
	return f
}

func (f *handlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomRejectsBadBody(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodPost, "/chat/rooms", gin.H{"user_a_id": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRoomOK(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 3, UserAID: 1, UserBID: 2, LastMessageAt: time.Now()}
	directory := map[int64]models.User{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	}

	f.users.On("BulkGet", mock.Anything, []int64{1, 2}).Return(directory, nil)
	f.rooms.On("GetOrCreate", mock.Anything, int64(1), int64(2)).Return(room, nil).Once()
	f.presence.On("BulkGet", mock.Anything, []int64{1, 2}).
		Return(map[int64]models.PresenceStatus{}, nil).Once()
	f.messages.On("LastMessage", mock.Anything, int64(3)).
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	rec := f.do(http.MethodPost, "/chat/rooms", gin.H{"user_a_id": 1, "user_b_id": 2})

	require.Equal(t, http.StatusOK, rec.Code)
	var view models.RoomView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(3), view.ID)
	assert.Equal(t, "alice", view.UserA.Name)
	f.rooms.AssertExpectations(t)
}

func TestGetRoomByUsersNotFound(t *testing.T) {
	f := newHandlerFixture()

	f.rooms.On("GetByUsers", mock.Anything, int64(1), int64(2)).
		Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	rec := f.do(http.MethodGet, "/chat/rooms/byUsers?userA=1&userB=2", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.rooms.AssertExpectations(t)
}

func TestGetMessagesForbiddenForNonMember(t *testing.T) {
	f := newHandlerFixture()

	f.rooms.On("Get", mock.Anything, int64(5)).
		Return(models.Room{ID: 5, UserAID: 1, UserBID: 2}, nil).Once()

	rec := f.do(http.MethodGet, "/chat/rooms/5/messages?userId=99", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.rooms.AssertExpectations(t)
}

func TestGetMessagesRequiresUserID(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(http.MethodGet, "/chat/rooms/5/messages", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryReturnsChronologicalReplay(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 5, UserAID: 1, UserBID: 2}
	first := models.Message{ID: 1, RoomID: 5, SenderID: 1, Content: "hello", Type: models.MessageTypeText}
	second := models.Message{ID: 2, RoomID: 5, SenderID: 2, Content: "hey", Type: models.MessageTypeText}

	f.rooms.On("Get", mock.Anything, int64(5)).Return(room, nil).Once()
	f.messages.On("ListAscending", mock.Anything, int64(5)).
		Return([]models.Message{first, second}, nil).Once()
	f.users.On("BulkGet", mock.Anything, []int64{1, 2}).
		Return(map[int64]models.User{1: {ID: 1}, 2: {ID: 2}}, nil).Once()
	f.presence.On("BulkGet", mock.Anything, []int64{1, 2}).
		Return(map[int64]models.PresenceStatus{}, nil).Once()

	rec := f.do(http.MethodGet, "/chat/rooms/5/history?userId=1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Messages []models.MessageView `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, int64(1), body.Messages[0].ID)
	assert.Equal(t, int64(2), body.Messages[1].ID)
	f.messages.AssertExpectations(t)
}

func TestPostMessageCreated(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 5, UserAID: 1, UserBID: 2}
	created := models.Message{
		ID: 9, RoomID: 5, SenderID: 1, Content: "hello",
		Type: models.MessageTypeText, CreatedAt: time.Now(),
	}

	f.rooms.On("Get", mock.Anything, int64(5)).Return(room, nil).Once()
	f.users.On("Get", mock.Anything, int64(1)).
		Return(models.User{ID: 1, Name: "alice"}, nil).Once()
	f.messages.On("Create", mock.Anything, int64(5), int64(1), "hello", models.MessageTypeText, (*string)(nil)).
		Return(created, nil).Once()
	f.presence.On("Get", mock.Anything, int64(1)).
		Return(models.PresenceStatus{UserID: 1, IsOnline: true}, nil).Once()

	rec := f.do(http.MethodPost, "/chat/messages?senderId=1", gin.H{"room_id": 5, "content": "hello"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var view models.MessageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "hello", view.Content)
	assert.Equal(t, int64(1), view.Sender.ID)
	f.messages.AssertExpectations(t)
}

func TestPostMessageEmptyContent(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 5, UserAID: 1, UserBID: 2}

	f.rooms.On("Get", mock.Anything, int64(5)).Return(room, nil).Once()
	f.users.On("Get", mock.Anything, int64(1)).Return(models.User{ID: 1}, nil).Once()

	rec := f.do(http.MethodPost, "/chat/messages?senderId=1", gin.H{"room_id": 5, "content": "  "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageForbiddenForPeer(t *testing.T) {
	f := newHandlerFixture()

	f.messages.On("Get", mock.Anything, int64(9)).
		Return(models.Message{ID: 9, RoomID: 5, SenderID: 1}, nil).Once()

	rec := f.do(http.MethodDelete, "/chat/messages/9?userId=2", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.messages.AssertExpectations(t)
}

func TestMarkReadOK(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 5, UserAID: 1, UserBID: 2}

	f.rooms.On("Get", mock.Anything, int64(5)).Return(room, nil).Once()
	f.messages.On("MarkRead", mock.Anything, int64(5), int64(2)).Return(int64(1), nil).Once()

	rec := f.do(http.MethodPost, "/chat/rooms/5/read?userId=2", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.messages.AssertExpectations(t)
}

func TestUnreadCountOK(t *testing.T) {
	f := newHandlerFixture()
	room := models.Room{ID: 5, UserAID: 1, UserBID: 2}

	f.rooms.On("Get", mock.Anything, int64(5)).Return(room, nil).Once()
	f.messages.On("UnreadCount", mock.Anything, int64(5), int64(2)).Return(int64(4), nil).Once()

	rec := f.do(http.MethodGet, "/chat/rooms/5/unread-count?userId=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.Count)
}

func TestMarkOnlineAlwaysOK(t *testing.T) {
	f := newHandlerFixture()

	f.presence.On("SetOnline", mock.Anything, int64(7), true).Return(assert.AnError).Once()

	rec := f.do(http.MethodPost, "/chat/users/7/online", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.presence.AssertExpectations(t)
}
