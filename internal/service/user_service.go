package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

const recoveryCodeCount = 10

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetTwoFactorSecret(ctx context.Context, id, secret string) error
	EnableTwoFactor(ctx context.Context, id string, codeHashes []string) error
	DisableTwoFactor(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// UserConfig defines configuration for account management.
type UserConfig struct {
	UserRegistrationEnabled  bool
	AdminRegistrationEnabled bool
	TOTPIssuer               string
}

// UserService provides account management use cases: registration, password
// changes and the two-factor enrollment lifecycle.
type UserService struct {
	store    userStore
	validate *validator.Validate
	logger   *zap.Logger
	config   UserConfig
}

// NewUserService constructs a UserService.
func NewUserService(store userStore, validate *validator.Validate, logger *zap.Logger, config UserConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TOTPIssuer == "" {
		config.TOTPIssuer = "Giron"
	}
	return &UserService{store: store, validate: validate, logger: logger, config: config}
}

// Register creates a new account when registration is enabled.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if !s.config.UserRegistrationEnabled || (req.IsAdmin && !s.config.AdminRegistrationEnabled) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "registration is disabled")
	}

	exists, err := s.store.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username exists")
	}

	if err := checkPasswordStrength(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	role := models.RoleUser
	if req.IsAdmin {
		role = models.RoleAdmin
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(role)))

	info := user.Info()
	return &info, nil
}

// UsernameExists reports whether a username is taken.
func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	return exists, nil
}

// ChangePassword updates the account password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, username string, req models.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is invalid")
	}

	if err := checkPasswordStrength(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.store.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// TwoFactorEnabled reports whether 2FA is active for the account.
func (s *UserService) TwoFactorEnabled(ctx context.Context, username string) (bool, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return false, err
	}
	return user.TwoFactorEnabled, nil
}

// GenerateTwoFactorKey creates and stores a pending authenticator secret for
// the account. Fails with a conflict when 2FA is already enabled.
func (s *UserService) GenerateTwoFactorKey(ctx context.Context, username string) (*models.TwoFactorKeyResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, appErrors.Clone(appErrors.ErrTwoFactorEnabled, "")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.config.TOTPIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate authenticator key")
	}

	if err := s.store.SetTwoFactorSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store authenticator key")
	}

	return &models.TwoFactorKeyResponse{AuthenticatorKey: key.Secret()}, nil
}

// EnableTwoFactor turns on 2FA after the user proves possession of both the
// password and the authenticator, and returns the single-use recovery codes.
func (s *UserService) EnableTwoFactor(ctx context.Context, username string, req models.TwoFactorEnableRequest) (*models.RecoveryCodesResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enable payload")
	}

	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "password is invalid")
	}

	if user.TwoFactorSecret == "" || !totp.Validate(req.Code, user.TwoFactorSecret) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "authenticator code is invalid")
	}

	codes, err := generateRecoveryCodes(recoveryCodeCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate recovery codes")
	}

	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = hashRecoveryCode(code)
	}

	if err := s.store.EnableTwoFactor(ctx, user.ID, hashes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enable two-factor authentication")
	}

	s.logger.Info("two-factor enabled", zap.String("username", user.Username))

	return &models.RecoveryCodesResponse{RecoveryCodes: codes}, nil
}

// DisableTwoFactor turns off 2FA after a password check.
func (s *UserService) DisableTwoFactor(ctx context.Context, username, password string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "password is invalid")
	}

	if err := s.store.DisableTwoFactor(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to disable two-factor authentication")
	}
	return nil
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

func (s *UserService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// checkPasswordStrength enforces the registration password policy: at least
// eight characters with an upper-case letter, a lower-case letter, a digit
// and a symbol.
func checkPasswordStrength(password string) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return appErrors.Clone(appErrors.ErrWeakPassword, "")
	}
	return nil
}

const recoveryCodeAlphabet = "abcdefghijklmnopqrstuvwxyz23456789"

// generateRecoveryCodes builds codes like "x7f3k-9qd2m". The embedded hyphen
// keeps a recovery code from ever being mistaken for an all-digit TOTP code.
func generateRecoveryCodes(n int) ([]string, error) {
	codes := make([]string, n)
	for i := range codes {
		buf := make([]byte, 10)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		chars := make([]byte, 10)
		for j, b := range buf {
			chars[j] = recoveryCodeAlphabet[int(b)%len(recoveryCodeAlphabet)]
		}
		codes[i] = fmt.Sprintf("%s-%s", chars[:5], chars[5:])
	}
	return codes, nil
}
