package database

import (
	"database/sql"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
)

// CreateComment inserts a new comment owned by comment.UserID
func (s *Store) CreateComment(comment *models.Comment) error {
	id, err := s.insert(
		`INSERT INTO comments (user_id, post_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		comment.UserID, comment.PostID, comment.Content, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// ListCommentsByPost returns all comments on a post, oldest first. Not
// owner-scoped: any authenticated user may read any post's comments.
func (s *Store) ListCommentsByPost(postID int64) ([]*models.Comment, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT id, user_id, post_id, content, created_at, updated_at FROM comments WHERE post_id = ? ORDER BY id`), postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetCommentOwned retrieves a comment only if it is owned by userID;
// foreign-owned comments are indistinguishable from missing ones.
func (s *Store) GetCommentOwned(userID, id int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(s.rebind(
		`SELECT id, user_id, post_id, content, created_at, updated_at FROM comments WHERE id = ? AND user_id = ?`),
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment deletes a comment only if it is owned by userID
func (s *Store) DeleteComment(userID, id int64) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM comments WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
