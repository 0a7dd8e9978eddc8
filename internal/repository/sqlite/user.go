package sqlite

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IsAuthorized checks if user is authorized
func (r *UserRepo) IsAuthorized(userID int64) (bool, error) {
	var authorized bool
	err := r.db.Get(&authorized, `SELECT authorized FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return authorized, err
}

// AuthorizeUser marks user as authorized
func (r *UserRepo) AuthorizeUser(userID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO users (user_id, authorized) VALUES (?, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET authorized = TRUE
	`, userID)
	return err
}

// EnsureUserExists creates user if not exists
func (r *UserRepo) EnsureUserExists(userID int64) error {
	_, err := r.db.Exec(`INSERT INTO users (user_id, authorized) VALUES (?, FALSE) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

// ListAuthorized returns the IDs of all authorized users
func (r *UserRepo) ListAuthorized() ([]int64, error) {
	var ids []int64
	err := r.db.Select(&ids, `SELECT user_id FROM users WHERE authorized = TRUE ORDER BY user_id`)
	return ids, err
}
