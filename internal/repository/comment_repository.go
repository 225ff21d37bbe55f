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

const commentColumns = `c.id, c.post_id, c.author_id, u.username AS author, c.body,
	(SELECT COUNT(*) FROM likes l WHERE l.comment_id = c.id) AS like_count,
	c.created_at, c.modified_at`

// CommentRepository provides database access for comments and their likes.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.ModifiedAt = now

	const query = `INSERT INTO comments (id, post_id, author_id, body, created_at, modified_at) VALUES (:id, :post_id, :author_id, :body, :created_at, :modified_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindByID returns a comment with its author and like count.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM comments c JOIN users u ON u.id = c.author_id WHERE c.id = $1 LIMIT 1`, commentColumns)
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return &comment, nil
}

// Exists reports whether a comment exists.
func (r *CommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("comment exists: %w", err)
	}
	return exists, nil
}

// ListByAuthor returns a user's comments matching the filter with total count.
func (r *CommentRepository) ListByAuthor(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error) {
	baseQuery := `FROM comments c JOIN users u ON u.id = c.author_id WHERE u.username = $1`
	args := []interface{}{filter.Author}
	var conditions []string

	if filter.BodyQuery != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.body) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.BodyQuery)+"%")
	}
	if !filter.FromDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("c.created_at >= $%d", len(args)+1))
		args = append(args, filter.FromDate)
	}
	if !filter.ToDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("c.created_at <= $%d", len(args)+1))
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d", commentColumns, baseQuery, pageSize, offset)

	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	return comments, total, nil
}

// Update replaces the comment body.
func (r *CommentRepository) Update(ctx context.Context, id, body string) error {
	const query = `UPDATE comments SET body = $2, modified_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, body, time.Now().UTC()); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment and its likes.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// AddLike records a like by the given account on a comment.
func (r *CommentRepository) AddLike(ctx context.Context, commentID, userID string) error {
	const query = `INSERT INTO likes (id, user_id, comment_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, commentID); err != nil {
		return fmt.Errorf("add comment like: %w", err)
	}
	return nil
}

// LikeExists reports whether the account has already liked the comment.
func (r *CommentRepository) LikeExists(ctx context.Context, commentID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE comment_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, commentID, userID); err != nil {
		return false, fmt.Errorf("comment like exists: %w", err)
	}
	return exists, nil
}

// RemoveLike deletes the account's like on a comment.
func (r *CommentRepository) RemoveLike(ctx context.Context, commentID, userID string) error {
	const query = `DELETE FROM likes WHERE comment_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, commentID, userID); err != nil {
		return fmt.Errorf("remove comment like: %w", err)
	}
	return nil
}
