package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions with a room's message log.
type MessageRepository interface {
	Create(ctx context.Context, roomID, senderID int64, content string, msgType models.MessageType, fileURL *string) (models.Message, error)
	Get(ctx context.Context, messageID int64) (models.Message, error)
	Page(ctx context.Context, roomID int64, page, size int) ([]models.Message, error)
	ListAscending(ctx context.Context, roomID int64) ([]models.Message, error)
	LastMessage(ctx context.Context, roomID int64) (models.Message, error)
	MarkRead(ctx context.Context, roomID, readerID int64) (int64, error)
	UnreadCount(ctx context.Context, roomID, userID int64) (int64, error)
	SoftDelete(ctx context.Context, messageID, senderID int64) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, room_id, sender_id, content, type, file_url, created_at, is_read, is_deleted, deleted_at, deleted_by_id`

// Create appends a message and advances the room's last_message_at in the
// same transaction. GREATEST keeps the activity timestamp monotone when
// appends race.
func (r *MessageRepo) Create(ctx context.Context, roomID, senderID int64, content string, msgType models.MessageType, fileURL *string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.GetContext(ctx, &msg,
		`INSERT INTO messages (room_id, sender_id, content, type, file_url)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING `+messageColumns, roomID, senderID, content, msgType, fileURL); err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET last_message_at = GREATEST(last_message_at, $2) WHERE id=$1`,
		roomID, msg.CreatedAt); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// Page returns one page of the room's history, newest first. The (created_at,
// id) sort key matches ListAscending, so pages and full replay never disagree
// on ordering.
func (r *MessageRepo) Page(ctx context.Context, roomID int64, page, size int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE room_id=$1
         ORDER BY created_at DESC, id DESC
         LIMIT $2 OFFSET $3`, roomID, size, page*size)
	return msgs, err
}

// ListAscending returns the room's full history in chronological order.
func (r *MessageRepo) ListAscending(ctx context.Context, roomID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE room_id=$1
         ORDER BY created_at ASC, id ASC`, roomID)
	return msgs, err
}

// LastMessage returns the newest message of the room.
func (r *MessageRepo) LastMessage(ctx context.Context, roomID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages
         WHERE room_id=$1
         ORDER BY created_at DESC, id DESC
         LIMIT 1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MarkRead flips every unread message authored by the reader's peer. The
// conditional update makes repeated calls no-ops and never touches the
// reader's own messages.
func (r *MessageRepo) MarkRead(ctx context.Context, roomID, readerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
         WHERE room_id=$1 AND sender_id<>$2 AND is_read = FALSE`, roomID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount counts messages addressed to the user that are still unread.
func (r *MessageRepo) UnreadCount(ctx context.Context, roomID, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE room_id=$1 AND sender_id<>$2 AND is_read = FALSE`, roomID, userID)
	return count, err
}

// SoftDelete marks the message deleted and records when and by whom. The
// sender guard in the WHERE clause backs up the facade's authorization check.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID, senderID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`UPDATE messages
         SET is_deleted = TRUE, deleted_at = NOW(), deleted_by_id = $2
         WHERE id=$1 AND sender_id=$2
         RETURNING `+messageColumns, messageID, senderID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
