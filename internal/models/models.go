package models

import "time"

// Post is a feed entry owned by exactly one user. Title and ImagePath are
// optional; a nil pointer means the field was never set.
type Post struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Title     *string     `json:"title"`
	Content   string      `json:"content"`
	ImagePath *string     `json:"image"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	User      *User       `json:"user,omitempty"`
	Comments  []*Comment  `json:"comments,omitempty"`
	Reactions []*Reaction `json:"reactions,omitempty"`
}

// Comment belongs to a post and is owned by the commenting user.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaction records a user's reaction to a post. A user has at most one
// reaction per post; reacting again replaces the type.
type Reaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
