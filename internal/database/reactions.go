package database

import (
	"database/sql"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
)

// UpsertReaction records a user's reaction to a post. The (user_id,
// post_id) unique constraint guarantees at most one reaction per user per
// post; reacting again replaces the type.
func (s *Store) UpsertReaction(reaction *models.Reaction) error {
	_, err := s.db.Exec(s.rebind(
		`INSERT INTO reactions (user_id, post_id, type, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, post_id) DO UPDATE SET type = excluded.type`),
		reaction.UserID, reaction.PostID, reaction.Type, reaction.CreatedAt,
	)
	if err != nil {
		return err
	}

	return s.db.QueryRow(s.rebind(
		`SELECT id, type, created_at FROM reactions WHERE user_id = ? AND post_id = ?`),
		reaction.UserID, reaction.PostID,
	).Scan(&reaction.ID, &reaction.Type, &reaction.CreatedAt)
}

// ListReactionsByPost returns all reactions on a post. Not owner-scoped.
func (s *Store) ListReactionsByPost(postID int64) ([]*models.Reaction, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT id, user_id, post_id, type, created_at FROM reactions WHERE post_id = ? ORDER BY id`), postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		r := &models.Reaction{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.PostID, &r.Type, &r.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}
	return reactions, rows.Err()
}

// GetReactionOwned retrieves a reaction only if it is owned by userID
func (s *Store) GetReactionOwned(userID, id int64) (*models.Reaction, error) {
	r := &models.Reaction{}
	err := s.db.QueryRow(s.rebind(
		`SELECT id, user_id, post_id, type, created_at FROM reactions WHERE id = ? AND user_id = ?`),
		id, userID,
	).Scan(&r.ID, &r.UserID, &r.PostID, &r.Type, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReaction deletes a reaction only if it is owned by userID
func (s *Store) DeleteReaction(userID, id int64) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM reactions WHERE id = ? AND user_id = ?`), id, userID)
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
