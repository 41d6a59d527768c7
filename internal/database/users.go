package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// CreateUser inserts a new user. Email uniqueness is enforced by the
// database constraint so that two concurrent registrations with the same
// email cannot both succeed; a violation surfaces as ErrEmailTaken.
func (s *Store) CreateUser(user *models.User) error {
	id, err := s.insert(
		`INSERT INTO users (name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.Password, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	user.ID = id
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(s.rebind(
		`SELECT id, name, email, password, created_at, updated_at FROM users WHERE email = ?`), email))
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRow(s.rebind(
		`SELECT id, name, email, password, created_at, updated_at FROM users WHERE id = ?`), id))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserActivity holds the per-user record counts shown on the profile.
type UserActivity struct {
	PostCount     int64
	CommentCount  int64
	ReactionCount int64
}

// CountUserActivity returns the number of posts, comments and reactions
// owned by the user.
func (s *Store) CountUserActivity(userID int64) (*UserActivity, error) {
	a := &UserActivity{}
	err := s.db.QueryRow(s.rebind(`SELECT
		(SELECT COUNT(*) FROM posts WHERE user_id = ?),
		(SELECT COUNT(*) FROM comments WHERE user_id = ?),
		(SELECT COUNT(*) FROM reactions WHERE user_id = ?)`),
		userID, userID, userID,
	).Scan(&a.PostCount, &a.CommentCount, &a.ReactionCount)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// touch is the timestamp written to updated_at on mutation.
func touch() time.Time {
	return time.Now()
}
