package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	GetOrCreate(ctx context.Context, userA, userB int64) (models.Room, error)
	Get(ctx context.Context, roomID int64) (models.Room, error)
	GetByUsers(ctx context.Context, userA, userB int64) (models.Room, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Room, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// canonicalPair orders the two user ids so that (A,B) and (B,A) map to the
// same storage key.
func canonicalPair(userA, userB int64) (int64, int64) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

const roomColumns = `id, user_a_id, user_b_id, created_at, last_message_at`

// GetOrCreate resolves the single room for the unordered pair, creating it
// on first contact. Under a concurrent create race the unique index on the
// canonical pair lets exactly one insert win; the loser re-reads the winner.
func (r *RoomRepo) GetOrCreate(ctx context.Context, userA, userB int64) (models.Room, error) {
	a, b := canonicalPair(userA, userB)

	var room models.Room
	err := r.db.GetContext(ctx, &room,
		`INSERT INTO rooms (user_a_id, user_b_id) VALUES ($1, $2)
         ON CONFLICT (user_a_id, user_b_id) DO NOTHING
         RETURNING `+roomColumns, a, b)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	err = r.db.GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM rooms WHERE user_a_id=$1 AND user_b_id=$2`, a, b)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// Get fetches a room by id.
func (r *RoomRepo) Get(ctx context.Context, roomID int64) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// GetByUsers fetches the room for the unordered pair without creating it.
func (r *RoomRepo) GetByUsers(ctx context.Context, userA, userB int64) (models.Room, error) {
	a, b := canonicalPair(userA, userB)
	var room models.Room
	err := r.db.GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM rooms WHERE user_a_id=$1 AND user_b_id=$2`, a, b)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// ListForUser returns every room containing the user, most recent activity
// first.
func (r *RoomRepo) ListForUser(ctx context.Context, userID int64) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms
         WHERE user_a_id=$1 OR user_b_id=$1
         ORDER BY last_message_at DESC`, userID)
	return rooms, err
}
