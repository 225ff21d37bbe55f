package models

import "time"

// Comment is a reply attached to a post.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	PostID     string    `db:"post_id" json:"post_id"`
	AuthorID   string    `db:"author_id" json:"-"`
	Author     string    `db:"author" json:"author"`
	Body       string    `db:"body" json:"body"`
	LikeCount  int       `db:"like_count" json:"like_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ModifiedAt time.Time `db:"modified_at" json:"modified_at"`
}

// CommentCreateRequest is the payload for creating a comment.
type CommentCreateRequest struct {
	PostID string `json:"post_id" validate:"required,uuid4"`
	Body   string `json:"body" validate:"required"`
}

// CommentUpdateRequest replaces the comment body.
type CommentUpdateRequest struct {
	Body string `json:"body" validate:"required"`
}

// CommentFilter captures list filters for a user's comments.
type CommentFilter struct {
	Author    string
	BodyQuery string
	FromDate  time.Time
	ToDate    time.Time
	Page      int
	PageSize  int
}
