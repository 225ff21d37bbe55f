package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

type credentialUserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ConsumeRecoveryCode(ctx context.Context, userID, codeHash string) (bool, error)
}

// CredentialValidator checks a username/password pair and, when the account
// has two-factor authentication enabled, a time-based one-time code or a
// single-use recovery code. Every failure path returns ErrInvalidCredentials
// so callers cannot distinguish which factor failed.
type CredentialValidator struct {
	store  credentialUserStore
	logger *zap.Logger
}

// NewCredentialValidator constructs a CredentialValidator.
func NewCredentialValidator(store credentialUserStore, logger *zap.Logger) *CredentialValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialValidator{store: store, logger: logger}
}

// Check validates the credential and returns the matched user on success.
func (v *CredentialValidator) Check(ctx context.Context, username, password, twoFactorCode string) (*models.User, error) {
	user, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !user.TwoFactorEnabled {
		return user, nil
	}

	if strings.TrimSpace(twoFactorCode) == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if isAllDigits(twoFactorCode) {
		if !totp.Validate(twoFactorCode, user.TwoFactorSecret) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return user, nil
	}

	consumed, err := v.store.ConsumeRecoveryCode(ctx, user.ID, hashRecoveryCode(twoFactorCode))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to redeem recovery code")
	}
	if !consumed {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	v.logger.Info("recovery code redeemed", zap.String("username", user.Username))
	return user, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func hashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
