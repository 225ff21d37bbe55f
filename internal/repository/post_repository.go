package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giron-dev/giron-api/internal/models"
)

const postColumns = `p.id, p.domain_name, p.author_id, u.username AS author, p.title, p.body,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	p.created_at, p.modified_at`

// PostRepository provides database access for posts and their likes.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.ModifiedAt = now

	const query = `INSERT INTO posts (id, domain_name, author_id, title, body, created_at, modified_at) VALUES (:id, :domain_name, :author_id, :title, :body, :created_at, :modified_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// FindByID returns a post with its author and like count.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1 LIMIT 1`, postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return &post, nil
}

// Exists reports whether a post exists.
func (r *PostRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("post exists: %w", err)
	}
	return exists, nil
}

// List returns posts matching the filter with total count, ordered by like
// count descending.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	baseQuery := `FROM posts p JOIN users u ON u.id = p.author_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("u.username = $%d", len(args)+1))
		args = append(args, filter.Author)
	}
	if filter.Domain != "" {
		conditions = append(conditions, fmt.Sprintf("p.domain_name = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Domain))
	}
	if filter.TitleQuery != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.TitleQuery)+"%")
	}
	if filter.BodyQuery != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.body) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.BodyQuery)+"%")
	}
	if !filter.FromDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", len(args)+1))
		args = append(args, filter.FromDate)
	}
	if !filter.ToDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("p.created_at <= $%d", len(args)+1))
		args = append(args, filter.ToDate)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY like_count DESC, p.created_at DESC LIMIT %d OFFSET %d", postColumns, baseQuery, pageSize, offset)

	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	return posts, total, nil
}

// Update replaces the title and body of a post.
func (r *PostRepository) Update(ctx context.Context, id, title, body string) error {
	const query = `UPDATE posts SET title = $2, body = $3, modified_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, title, body, time.Now().UTC()); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post and, via cascading constraints, its comments and likes.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM posts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AddLike records a like by the given account on a post.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) error {
	const query = `INSERT INTO likes (id, user_id, post_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, postID); err != nil {
		return fmt.Errorf("add post like: %w", err)
	}
	return nil
}

// LikeExists reports whether the account has already liked the post.
func (r *PostRepository) LikeExists(ctx context.Context, postID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, postID, userID); err != nil {
		return false, fmt.Errorf("post like exists: %w", err)
	}
	return exists, nil
}

// RemoveLike deletes the account's like on a post.
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	const query = `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("remove post like: %w", err)
	}
	return nil
}
