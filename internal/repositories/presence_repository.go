package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
)

var ErrPresenceNotFound = errors.New("presence not found")

// PresenceRepository stores best-effort online state. Writes are
// last-writer-wins; callers treat every error as non-fatal.
type PresenceRepository interface {
	SetOnline(ctx context.Context, userID int64, online bool) error
	Touch(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (models.PresenceStatus, error)
	BulkGet(ctx context.Context, userIDs []int64) (map[int64]models.PresenceStatus, error)
	MarkStaleOffline(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PresenceRepo is a sqlx implementation of PresenceRepository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs a PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// SetOnline upserts the user's row with the new state and refreshes
// last_seen.
func (r *PresenceRepo) SetOnline(ctx context.Context, userID int64, online bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_status (user_id, is_online, last_seen) VALUES ($1, $2, NOW())
         ON CONFLICT (user_id) DO UPDATE SET is_online = EXCLUDED.is_online, last_seen = NOW()`,
		userID, online)
	return err
}

// Touch refreshes last_seen only, creating the row on the first heartbeat.
func (r *PresenceRepo) Touch(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_status (user_id, last_seen) VALUES ($1, NOW())
         ON CONFLICT (user_id) DO UPDATE SET last_seen = NOW()`, userID)
	return err
}

// Get fetches a single user's presence row.
func (r *PresenceRepo) Get(ctx context.Context, userID int64) (models.PresenceStatus, error) {
	var status models.PresenceStatus
	err := r.db.GetContext(ctx, &status,
		`SELECT id, user_id, is_online, last_seen FROM user_status WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PresenceStatus{}, ErrPresenceNotFound
	}
	return status, err
}

// BulkGet fetches presence for several users at once; absent users simply
// have no entry in the result.
func (r *PresenceRepo) BulkGet(ctx context.Context, userIDs []int64) (map[int64]models.PresenceStatus, error) {
	result := make(map[int64]models.PresenceStatus, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, user_id, is_online, last_seen FROM user_status WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}

	var rows []models.PresenceStatus
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row
	}
	return result, nil
}

// MarkStaleOffline flips online rows whose last_seen fell behind the
// threshold. Covers sessions that vanished without a disconnect.
func (r *PresenceRepo) MarkStaleOffline(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_status SET is_online = FALSE
         WHERE is_online = TRUE AND last_seen < NOW() - make_interval(secs => $1)`,
		olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
