package database

import (
	"database/sql"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
)

const postColumns = `id, user_id, title, content, image, created_at, updated_at`

// CreatePost inserts a new post owned by post.UserID
func (s *Store) CreatePost(post *models.Post) error {
	id, err := s.insert(
		`INSERT INTO posts (user_id, title, content, image, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		post.UserID, post.Title, post.Content, post.ImagePath, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

// GetPost retrieves a post by ID regardless of owner. Used by the feed
// read paths, which are intentionally not owner-scoped.
func (s *Store) GetPost(id int64) (*models.Post, error) {
	return scanPost(s.db.QueryRow(s.rebind(
		`SELECT `+postColumns+` FROM posts WHERE id = ?`), id))
}

// GetPostOwned retrieves a post only if it is owned by userID. A post that
// exists but belongs to someone else is reported as ErrNotFound so the
// caller cannot tell the two cases apart.
func (s *Store) GetPostOwned(userID, id int64) (*models.Post, error) {
	return scanPost(s.db.QueryRow(s.rebind(
		`SELECT `+postColumns+` FROM posts WHERE id = ? AND user_id = ?`), id, userID))
}

// ListPosts returns every post with its author, comments and reactions
// attached. This is the global feed read, available to any authenticated
// user.
func (s *Store) ListPosts() ([]*models.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		user, err := s.GetUserByID(post.UserID)
		if err != nil {
			return nil, err
		}
		post.User = user

		if post.Comments, err = s.ListCommentsByPost(post.ID); err != nil {
			return nil, err
		}
		if post.Reactions, err = s.ListReactionsByPost(post.ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// ListPostsByUser returns the posts owned by userID, newest first
func (s *Store) ListPostsByUser(userID int64) ([]*models.Post, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// UpdatePost persists title, content and image of an already-loaded post.
// The caller is expected to have fetched the post through GetPostOwned.
func (s *Store) UpdatePost(post *models.Post) error {
	post.UpdatedAt = touch()
	_, err := s.db.Exec(s.rebind(
		`UPDATE posts SET title = ?, content = ?, image = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
		post.Title, post.Content, post.ImagePath, post.UpdatedAt, post.ID, post.UserID,
	)
	return err
}

// DeletePost deletes a post only if it is owned by userID
func (s *Store) DeletePost(userID, id int64) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM posts WHERE id = ? AND user_id = ?`), id, userID)
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

func scanPost(row *sql.Row) (*models.Post, error) {
	post := &models.Post{}
	err := row.Scan(&post.ID, &post.UserID, &post.Title, &post.Content, &post.ImagePath, &post.CreatedAt, &post.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		err := rows.Scan(&post.ID, &post.UserID, &post.Title, &post.Content, &post.ImagePath, &post.CreatedAt, &post.UpdatedAt)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
