package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/repository"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
	"github.com/giron-dev/giron-api/pkg/token"
)

type sessionUserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionConfig defines the token lifetimes for issued sessions.
type SessionConfig struct {
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SessionService orchestrates the session lifecycle: credential validation,
// token issuance, refresh and revocation.
type SessionService struct {
	credentials *CredentialValidator
	users       sessionUserStore
	revoked     repository.RevocationLog
	codec       *token.Codec
	keys        *token.Keyring
	validate    *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	config      SessionConfig
}

// NewSessionService constructs a SessionService.
func NewSessionService(
	credentials *CredentialValidator,
	users sessionUserStore,
	revoked repository.RevocationLog,
	codec *token.Codec,
	keys *token.Keyring,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	config SessionConfig,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{
		credentials: credentials,
		users:       users,
		revoked:     revoked,
		codec:       codec,
		keys:        keys,
		validate:    validate,
		logger:      logger,
		metrics:     metrics,
		config:      config,
	}
}

// CreateSession authenticates the credential and issues an access/refresh
// token pair. On failure no token is issued.
func (s *SessionService) CreateSession(ctx context.Context, req models.SessionCreateRequest) (*models.TokenPair, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	user, err := s.credentials.Check(ctx, req.Username, req.Password, req.TwoFactorCode)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Issue(s.keys.Access(), user.Username, string(user.Role), s.config.AccessTokenExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshToken, err := s.codec.Issue(s.keys.Refresh(), user.Username, string(user.Role), s.config.RefreshTokenExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	s.metrics.ObserveSessionCreated()
	s.logger.Info("session created", zap.String("username", user.Username))

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshAccessToken exchanges a valid, unrevoked refresh token for a new
// access token. The refresh token itself is never rotated.
func (s *SessionService) RefreshAccessToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	revoked, err := s.revoked.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check revocation log")
	}
	if revoked {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "refresh token is invalid")
	}

	claims, ok := s.codec.Verify(refreshToken, s.keys.Refresh())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "refresh token is invalid")
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "refresh token is invalid")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	accessToken, err := s.codec.Issue(s.keys.Access(), user.Username, string(user.Role), s.config.AccessTokenExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.metrics.ObserveSessionRefreshed()

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// EndSession revokes the refresh token. The token is verified first: a
// malformed or expired token is already unusable and cannot be revoked.
// Ending an already-ended session succeeds again with no further effect.
func (s *SessionService) EndSession(ctx context.Context, refreshToken string) error {
	claims, ok := s.codec.Verify(refreshToken, s.keys.Refresh())
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidToken, "refresh token is invalid")
	}

	if err := s.revoked.Revoke(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
	}

	s.metrics.ObserveSessionRevoked()
	s.logger.Info("session ended", zap.String("username", claims.Username))

	return nil
}

// ValidateAccessToken parses and validates an access token, returning its
// claims. Used by the authentication middleware.
func (s *SessionService) ValidateAccessToken(tokenString string) (*token.Claims, error) {
	claims, ok := s.codec.Verify(tokenString, s.keys.Access())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid access token")
	}
	return claims, nil
}
