package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

type commentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByAuthor(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error)
	Update(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, commentID, userID string) error
	LikeExists(ctx context.Context, commentID, userID string) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID string) error
}

type commentPostStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CommentService manages comments under posts and their likes.
type CommentService struct {
	store    commentStore
	posts    commentPostStore
	users    sessionUserStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(store commentStore, posts commentPostStore, users sessionUserStore, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CommentService{store: store, posts: posts, users: users, validate: validate, logger: logger}
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, req models.CommentCreateRequest, authorUsername string) (*models.Comment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	exists, err := s.posts.Exists(ctx, req.PostID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check post")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}

	author, err := s.actor(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: author.ID,
		Author:   author.Username,
		Body:     req.Body,
	}
	if err := s.store.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// Get returns a comment by identifier.
func (s *CommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	return s.findComment(ctx, id)
}

// ListByAuthor returns comments written by the given account, newest first.
func (s *CommentService) ListByAuthor(ctx context.Context, filter models.CommentFilter) ([]models.Comment, *models.Pagination, error) {
	comments, total, err := s.store.ListByAuthor(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return comments, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update replaces the comment body. Only the author may edit a comment.
func (s *CommentService) Update(ctx context.Context, id string, req models.CommentUpdateRequest, actorUsername string) (*models.Comment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	comment, err := s.findComment(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorUsername)
	if err != nil {
		return nil, err
	}
	if actor.ID != comment.AuthorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit a comment")
	}

	if err := s.store.Update(ctx, id, req.Body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
	}

	return s.findComment(ctx, id)
}

// Delete removes a comment. Allowed for the author and for admins.
func (s *CommentService) Delete(ctx context.Context, id, actorUsername string, actorRole models.UserRole) error {
	comment, err := s.findComment(ctx, id)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin {
		actor, err := s.actor(ctx, actorUsername)
		if err != nil {
			return err
		}
		if actor.ID != comment.AuthorID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin may delete a comment")
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}

// Like records a like on the comment for the acting account. Liking twice is
// a conflict.
func (s *CommentService) Like(ctx context.Context, id, actorUsername string) (*models.Comment, error) {
	if _, err := s.findComment(ctx, id); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorUsername)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.LikeExists(ctx, id, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check like")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "comment already liked")
	}

	if err := s.store.AddLike(ctx, id, actor.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like comment")
	}

	return s.findComment(ctx, id)
}

// Unlike removes the acting account's like from the comment.
func (s *CommentService) Unlike(ctx context.Context, id, actorUsername string) error {
	if _, err := s.findComment(ctx, id); err != nil {
		return err
	}

	actor, err := s.actor(ctx, actorUsername)
	if err != nil {
		return err
	}

	exists, err := s.store.LikeExists(ctx, id, actor.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check like")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "like not found")
	}

	if err := s.store.RemoveLike(ctx, id, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlike comment")
	}
	return nil
}

func (s *CommentService) findComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch comment")
	}
	return comment, nil
}

func (s *CommentService) actor(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}
