package ws

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/chat"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/observability"
)

// EventSink accepts events for asynchronous fan-out.
type EventSink interface {
	Enqueue(event models.Event)
}

// ClientFrame is a command received from a connected client. The actor
// identity always comes from the session, never from the frame.
type ClientFrame struct {
	Type    models.EventType   `json:"type"`
	Content string             `json:"content,omitempty"`
	MsgType models.MessageType `json:"message_type,omitempty"`
	FileURL *string            `json:"file_url,omitempty"`
}

const frameSendMessage = models.EventType("SEND_MESSAGE")
const frameMarkRead = models.EventType("MARK_READ")

// SocketHandler upgrades room subscriptions and binds the transport
// lifecycle to presence.
type SocketHandler struct {
	hub  *Hub
	svc  *chat.Service
	sink EventSink
	log  zerolog.Logger
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(hub *Hub, svc *chat.Service, sink EventSink, log zerolog.Logger) *SocketHandler {
	return &SocketHandler{hub: hub, svc: svc, sink: sink, log: log.With().Str("component", "ws").Logger()}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authorizes the subscriber, upgrades the connection and runs the
// session until the client goes away.
func (h *SocketHandler) Handle(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, span := otel.Tracer("sikhshan-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	member, err := h.svc.IsRoomMember(ctx, roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(roomID, conn, info)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	// Transport connect means the user is reachable. Best-effort only;
	// message correctness never depends on presence.
	h.svc.MarkOnline(ctx, userID)
	h.sink.Enqueue(models.Event{
		Type:      models.EventUserOnline,
		RoomID:    roomID,
		SenderID:  userID,
		Payload:   map[string]any{"user_id": userID},
		Timestamp: time.Now().UTC(),
	})

	go h.readLoop(context.WithoutCancel(ctx), conn, roomID, info)
}

func (h *SocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, roomID int64, info ConnInfo) {
	defer func() {
		h.hub.Remove(roomID, conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")

		h.svc.MarkOffline(ctx, info.UserID)
		h.sink.Enqueue(models.Event{
			Type:      models.EventUserOffline,
			RoomID:    roomID,
			SenderID:  info.UserID,
			Payload:   map[string]any{"user_id": info.UserID},
			Timestamp: time.Now().UTC(),
		})
	}()

	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.log.Debug().Err(err).Str("conn_id", info.ConnID).Msg("socket closed")
			}
			return
		}

		// Any inbound frame counts as activity for the presence heartbeat.
		h.svc.TouchLastSeen(ctx, info.UserID)

		switch frame.Type {
		case models.EventTypingStart, models.EventTypingStop:
			// Ephemeral: dropped silently on any failure downstream.
			h.sink.Enqueue(models.Event{
				Type:      frame.Type,
				RoomID:    roomID,
				SenderID:  info.UserID,
				Payload:   map[string]any{"room_id": roomID, "user_id": info.UserID},
				Timestamp: time.Now().UTC(),
			})
		case frameMarkRead:
			if err := h.svc.MarkRead(ctx, roomID, info.UserID); err != nil {
				h.sendError(info.UserID, roomID, "failed to mark messages as read")
			}
		case frameSendMessage:
			req := chat.SendMessageRequest{
				RoomID:  roomID,
				Content: frame.Content,
				Type:    frame.MsgType,
				FileURL: frame.FileURL,
			}
			if _, err := h.svc.SendMessage(ctx, info.UserID, req); err != nil {
				h.sendError(info.UserID, roomID, "failed to send message")
			}
		default:
			h.sendError(info.UserID, roomID, "unknown frame type")
		}
	}
}

// sendError reports a failed command on the caller's own channel, never the
// room topic.
func (h *SocketHandler) sendError(userID, roomID int64, reason string) {
	h.sink.Enqueue(models.Event{
		Type:         models.EventError,
		RoomID:       roomID,
		Payload:      map[string]any{"error": reason},
		Timestamp:    time.Now().UTC(),
		TargetUserID: userID,
	})
}
