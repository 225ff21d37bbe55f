package models

import "time"

// Post is a top-level submission inside a domain.
type Post struct {
	ID         string    `db:"id" json:"id"`
	DomainName string    `db:"domain_name" json:"domain_name"`
	AuthorID   string    `db:"author_id" json:"-"`
	Author     string    `db:"author" json:"author"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	LikeCount  int       `db:"like_count" json:"like_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ModifiedAt time.Time `db:"modified_at" json:"modified_at"`
}

// PostCreateRequest is the payload for creating a post.
type PostCreateRequest struct {
	Domain string `json:"domain" validate:"required"`
	Title  string `json:"title" validate:"required,max=300"`
	Body   string `json:"body" validate:"required"`
}

// PostUpdateRequest updates title and/or body; nil fields are left as-is.
type PostUpdateRequest struct {
	Title *string `json:"title" validate:"omitempty,max=300"`
	Body  *string `json:"body"`
}

// PostFilter captures list filters for the posts collection.
type PostFilter struct {
	Author     string
	Domain     string
	TitleQuery string
	BodyQuery  string
	FromDate   time.Time
	ToDate     time.Time
	Page       int
	PageSize   int
}
