package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

type domainStore interface {
	Create(ctx context.Context, domain *models.Domain) error
	List(ctx context.Context) ([]models.Domain, error)
	FindByName(ctx context.Context, name string) (*models.Domain, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// DomainService manages the discussion domains posts are grouped under.
type DomainService struct {
	store    domainStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewDomainService constructs a DomainService.
func NewDomainService(store domainStore, validate *validator.Validate, logger *zap.Logger) *DomainService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DomainService{store: store, validate: validate, logger: logger}
}

// Create adds a new domain. Names are normalized to lower case and must be
// unique.
func (s *DomainService) Create(ctx context.Context, req models.DomainCreateRequest) (*models.Domain, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid domain payload")
	}

	name := strings.ToLower(req.Name)
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check domain")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "domain exists")
	}

	domain := &models.Domain{Name: name}
	if err := s.store.Create(ctx, domain); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create domain")
	}

	s.logger.Info("domain created", zap.String("name", domain.Name))
	return domain, nil
}

// List returns all domains.
func (s *DomainService) List(ctx context.Context) ([]models.Domain, error) {
	domains, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list domains")
	}
	return domains, nil
}

// GetByName returns a domain by name.
func (s *DomainService) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	domain, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "domain not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch domain")
	}
	return domain, nil
}
