package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/repositories"
)

// EventSink receives committed state changes for asynchronous delivery.
// Enqueue must never block the caller.
type EventSink interface {
	Enqueue(event models.Event)
}

// SendMessageRequest carries the payload of a send operation.
type SendMessageRequest struct {
	RoomID  int64              `json:"room_id" binding:"required"`
	Content string             `json:"content"`
	Type    models.MessageType `json:"type"`
	FileURL *string            `json:"file_url"`
}

// Service is the authorization-checked orchestration layer over rooms,
// messages, presence and the user directory. Every public operation
// re-validates room membership before touching state.
type Service struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	presence repositories.PresenceRepository
	events   EventSink
	log      zerolog.Logger
}

// NewService constructs the facade.
func NewService(
	rooms repositories.RoomRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	presence repositories.PresenceRepository,
	events EventSink,
	log zerolog.Logger,
) *Service {
	return &Service{
		rooms:    rooms,
		messages: messages,
		users:    users,
		presence: presence,
		events:   events,
		log:      log.With().Str("component", "chat").Logger(),
	}
}

// CreateOrGetRoom resolves the single room for the unordered user pair,
// creating it on first contact. Both users must exist.
func (s *Service) CreateOrGetRoom(ctx context.Context, userA, userB int64) (models.RoomView, error) {
	if userA == userB {
		return models.RoomView{}, ErrSelfRoom
	}

	users, err := s.users.BulkGet(ctx, []int64{userA, userB})
	if err != nil {
		return models.RoomView{}, err
	}
	for _, id := range []int64{userA, userB} {
		if _, ok := users[id]; !ok {
			return models.RoomView{}, repositories.ErrUserNotFound
		}
	}

	room, err := s.rooms.GetOrCreate(ctx, userA, userB)
	if err != nil {
		return models.RoomView{}, err
	}
	return s.roomView(ctx, room)
}

// RoomByID returns the room view after verifying membership.
func (s *Service) RoomByID(ctx context.Context, roomID, userID int64) (models.RoomView, error) {
	room, err := s.memberRoom(ctx, roomID, userID)
	if err != nil {
		return models.RoomView{}, err
	}
	return s.roomView(ctx, room)
}

// RoomByUsers returns the existing room for the pair without creating one.
func (s *Service) RoomByUsers(ctx context.Context, userA, userB int64) (models.RoomView, error) {
	room, err := s.rooms.GetByUsers(ctx, userA, userB)
	if err != nil {
		return models.RoomView{}, err
	}
	return s.roomView(ctx, room)
}

// RoomsForUser lists the user's rooms, most recent activity first.
func (s *Service) RoomsForUser(ctx context.Context, userID int64) ([]models.RoomView, error) {
	rooms, err := s.rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.RoomView, 0, len(rooms))
	for _, room := range rooms {
		view, err := s.roomView(ctx, room)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// IsRoomMember reports whether the user participates in the room.
func (s *Service) IsRoomMember(ctx context.Context, roomID, userID int64) (bool, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return room.ContainsUser(userID), nil
}

// SendMessage appends a message to the room's log and hands the committed
// result to the delivery gateway. The caller's confirmation is the returned
// view; broadcast delivery is asynchronous and best-effort.
func (s *Service) SendMessage(ctx context.Context, senderID int64, req SendMessageRequest) (models.MessageView, error) {
	ctx, span := otel.Tracer("sikhshan-chat").Start(ctx, "chat.send",
		trace.WithAttributes(attribute.Int64("chat.room_id", req.RoomID)))
	defer span.End()

	room, err := s.memberRoom(ctx, req.RoomID, senderID)
	if err != nil {
		return models.MessageView{}, err
	}

	sender, err := s.users.Get(ctx, senderID)
	if err != nil {
		return models.MessageView{}, err
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !msgType.Valid() {
		return models.MessageView{}, ErrUnknownMessageType
	}
	if msgType == models.MessageTypeText && strings.TrimSpace(req.Content) == "" {
		return models.MessageView{}, ErrContentRequired
	}

	msg, err := s.messages.Create(ctx, room.ID, senderID, req.Content, msgType, req.FileURL)
	if err != nil {
		return models.MessageView{}, err
	}

	view := msg.View()
	view.Sender = sender.Summary(s.isOnline(ctx, senderID))

	s.emit(models.Event{
		Type:     models.EventNewMessage,
		RoomID:   room.ID,
		SenderID: senderID,
		Payload:  view,
	})
	return view, nil
}

// Messages returns one page of the room's history, newest first.
func (s *Service) Messages(ctx context.Context, roomID, userID int64, page, size int) ([]models.MessageView, error) {
	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.Page(ctx, roomID, page, size)
	if err != nil {
		return nil, err
	}
	return s.messageViews(ctx, msgs)
}

// History returns the room's full chronological replay.
func (s *Service) History(ctx context.Context, roomID, userID int64) ([]models.MessageView, error) {
	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListAscending(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.messageViews(ctx, msgs)
}

// DeleteMessage soft-deletes a message. Only the original sender may delete;
// the stored row survives and read paths see the redaction placeholder.
func (s *Service) DeleteMessage(ctx context.Context, messageID, userID int64) (models.MessageView, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return models.MessageView{}, err
	}
	if msg.SenderID != userID {
		return models.MessageView{}, ErrNotMessageSender
	}

	deleted, err := s.messages.SoftDelete(ctx, messageID, userID)
	if err != nil {
		return models.MessageView{}, err
	}

	views, err := s.messageViews(ctx, []models.Message{deleted})
	if err != nil {
		return models.MessageView{}, err
	}
	view := views[0]

	s.emit(models.Event{
		Type:     models.EventMessageDeleted,
		RoomID:   deleted.RoomID,
		SenderID: userID,
		Payload:  map[string]any{"message_id": deleted.ID, "room_id": deleted.RoomID},
	})
	return view, nil
}

// MarkRead flips every unread peer-authored message in the room. Idempotent:
// repeated calls change nothing after the first.
func (s *Service) MarkRead(ctx context.Context, roomID, userID int64) error {
	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return err
	}

	if _, err := s.messages.MarkRead(ctx, roomID, userID); err != nil {
		return err
	}

	s.emit(models.Event{
		Type:     models.EventMessageRead,
		RoomID:   roomID,
		SenderID: userID,
		Payload:  map[string]any{"room_id": roomID, "reader_id": userID},
	})
	return nil
}

// UnreadCount counts the caller's unread messages in the room.
func (s *Service) UnreadCount(ctx context.Context, roomID, userID int64) (int64, error) {
	if _, err := s.memberRoom(ctx, roomID, userID); err != nil {
		return 0, err
	}
	return s.messages.UnreadCount(ctx, roomID, userID)
}

// MarkOnline records the user as online. Presence is informational: failures
// are logged and swallowed so they can never abort a chat operation.
func (s *Service) MarkOnline(ctx context.Context, userID int64) {
	if err := s.presence.SetOnline(ctx, userID, true); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("presence mark online failed")
	}
}

// MarkOffline records the user as offline, best-effort.
func (s *Service) MarkOffline(ctx context.Context, userID int64) {
	if err := s.presence.SetOnline(ctx, userID, false); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("presence mark offline failed")
	}
}

// TouchLastSeen refreshes the user's last-seen timestamp, best-effort.
func (s *Service) TouchLastSeen(ctx context.Context, userID int64) {
	if err := s.presence.Touch(ctx, userID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("presence touch failed")
	}
}

func (s *Service) memberRoom(ctx context.Context, roomID, userID int64) (models.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if !room.ContainsUser(userID) {
		return models.Room{}, ErrNotRoomMember
	}
	return room, nil
}

func (s *Service) emit(event models.Event) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.events.Enqueue(event)
}

// isOnline resolves presence for a single user. Errors and missing rows read
// as offline.
func (s *Service) isOnline(ctx context.Context, userID int64) bool {
	status, err := s.presence.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrPresenceNotFound) {
			s.log.Warn().Err(err).Int64("user_id", userID).Msg("presence lookup failed")
		}
		return false
	}
	return status.IsOnline
}

// userSummaries bulk-resolves directory info plus best-effort presence.
func (s *Service) userSummaries(ctx context.Context, userIDs []int64) (map[int64]models.UserSummary, error) {
	users, err := s.users.BulkGet(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	presence, err := s.presence.BulkGet(ctx, userIDs)
	if err != nil {
		s.log.Warn().Err(err).Msg("bulk presence lookup failed")
		presence = map[int64]models.PresenceStatus{}
	}

	summaries := make(map[int64]models.UserSummary, len(users))
	for id, u := range users {
		summaries[id] = u.Summary(presence[id].IsOnline)
	}
	return summaries, nil
}

func (s *Service) roomView(ctx context.Context, room models.Room) (models.RoomView, error) {
	summaries, err := s.userSummaries(ctx, []int64{room.UserAID, room.UserBID})
	if err != nil {
		return models.RoomView{}, err
	}

	view := models.RoomView{
		ID:            room.ID,
		UserA:         summaries[room.UserAID],
		UserB:         summaries[room.UserBID],
		CreatedAt:     room.CreatedAt,
		LastMessageAt: room.LastMessageAt,
	}

	last, err := s.messages.LastMessage(ctx, room.ID)
	switch {
	case err == nil:
		senderName := summaries[last.SenderID].Name
		if senderName == "" {
			senderName = summaries[last.SenderID].Email
		}
		summary := last.Summary(senderName)
		view.LastMessage = &summary
	case !errors.Is(err, repositories.ErrMessageNotFound):
		return models.RoomView{}, err
	}
	return view, nil
}

// messageViews attaches sender (and deleter) summaries to a batch of rows.
func (s *Service) messageViews(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	idSet := map[int64]struct{}{}
	ids := make([]int64, 0, len(msgs))
	collect := func(id int64) {
		if _, ok := idSet[id]; !ok {
			idSet[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, m := range msgs {
		collect(m.SenderID)
		if m.DeletedByID != nil {
			collect(*m.DeletedByID)
		}
	}

	summaries, err := s.userSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		view := m.View()
		view.Sender = summaries[m.SenderID]
		if m.IsDeleted && m.DeletedByID != nil {
			if deleter, ok := summaries[*m.DeletedByID]; ok {
				view.DeletedBy = &deleter
			}
		}
		views = append(views, view)
	}
	return views, nil
}
