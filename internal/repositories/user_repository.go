package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads platform accounts. The chat service never writes this
// table; identity management lives upstream.
type UserRepository interface {
	Get(ctx context.Context, userID int64) (models.User, error)
	BulkGet(ctx context.Context, userIDs []int64) (map[int64]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, role, avatar_url`

// Get fetches a single user.
func (r *UserRepo) Get(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkGet fetches several users keyed by id. Missing ids are absent from the
// result rather than an error.
func (r *UserRepo) BulkGet(ctx context.Context, userIDs []int64) (map[int64]models.User, error) {
	result := make(map[int64]models.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
