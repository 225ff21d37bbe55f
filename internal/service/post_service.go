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

type postStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
	Update(ctx context.Context, id, title, body string) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) error
	LikeExists(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) error
}

type postDomainStore interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// PostService manages posts and their likes.
type PostService struct {
	store    postStore
	domains  postDomainStore
	users    sessionUserStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPostService constructs a PostService.
func NewPostService(store postStore, domains postDomainStore, users sessionUserStore, validate *validator.Validate, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PostService{store: store, domains: domains, users: users, validate: validate, logger: logger}
}

// Create submits a new post to an existing domain.
func (s *PostService) Create(ctx context.Context, req models.PostCreateRequest, authorUsername string) (*models.Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	exists, err := s.domains.Exists(ctx, req.Domain)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check domain")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "domain not found")
	}

	author, err := s.actor(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		DomainName: req.Domain,
		AuthorID:   author.ID,
		Author:     author.Username,
		Title:      req.Title,
		Body:       req.Body,
	}
	if err := s.store.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	return post, nil
}

// Get returns a post by identifier.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.findPost(ctx, id)
}

// List returns posts matching the filter together with pagination metadata.
func (s *PostService) List(ctx context.Context, filter models.PostFilter) ([]models.Post, *models.Pagination, error) {
	posts, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return posts, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update changes the title and/or body. Only the author may edit a post.
func (s *PostService) Update(ctx context.Context, id string, req models.PostUpdateRequest, actorUsername string) (*models.Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorUsername)
	if err != nil {
		return nil, err
	}
	if actor.ID != post.AuthorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit a post")
	}

	title := post.Title
	if req.Title != nil {
		title = *req.Title
	}
	body := post.Body
	if req.Body != nil {
		body = *req.Body
	}

	if err := s.store.Update(ctx, id, title, body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update post")
	}

	return s.findPost(ctx, id)
}

// Delete removes a post. Allowed for the author and for admins.
func (s *PostService) Delete(ctx context.Context, id, actorUsername string, actorRole models.UserRole) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin {
		actor, err := s.actor(ctx, actorUsername)
		if err != nil {
			return err
		}
		if actor.ID != post.AuthorID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin may delete a post")
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	return nil
}

// Like records a like on the post for the acting account. Liking twice is a
// conflict.
func (s *PostService) Like(ctx context.Context, id, actorUsername string) (*models.Post, error) {
	if _, err := s.findPost(ctx, id); err != nil {
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
		return nil, appErrors.Clone(appErrors.ErrConflict, "post already liked")
	}

	if err := s.store.AddLike(ctx, id, actor.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like post")
	}

	return s.findPost(ctx, id)
}

// Unlike removes the acting account's like from the post.
func (s *PostService) Unlike(ctx context.Context, id, actorUsername string) error {
	if _, err := s.findPost(ctx, id); err != nil {
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
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlike post")
	}
	return nil
}

func (s *PostService) findPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch post")
	}
	return post, nil
}

func (s *PostService) actor(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}
