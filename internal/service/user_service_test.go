package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

type mockUserRepo struct {
	user        *models.User
	created     *models.User
	codeHashes  []string
	passwordSet string
	deleted     bool
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return m.user != nil && m.user.Username == username, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated-id"
	m.created = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.passwordSet = passwordHash
	return nil
}

func (m *mockUserRepo) SetTwoFactorSecret(ctx context.Context, id, secret string) error {
	m.user.TwoFactorSecret = secret
	return nil
}

func (m *mockUserRepo) EnableTwoFactor(ctx context.Context, id string, codeHashes []string) error {
	m.user.TwoFactorEnabled = true
	m.codeHashes = codeHashes
	return nil
}

func (m *mockUserRepo) DisableTwoFactor(ctx context.Context, id string) error {
	m.user.TwoFactorEnabled = false
	m.user.TwoFactorSecret = ""
	m.codeHashes = nil
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.deleted = true
	return nil
}

func newUserService(repo *mockUserRepo, config UserConfig) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop(), config)
}

func TestRegisterSuccess(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo, UserConfig{UserRegistrationEnabled: true})

	info, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: "Str0ngPass!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, models.RoleUser, info.Role)
	require.NotNil(t, repo.created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("Str0ngPass!")))
}

func TestRegisterAdminRequiresFlag(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, UserConfig{UserRegistrationEnabled: true})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "root", Password: "Str0ngPass!", IsAdmin: true})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))

	svc = newUserService(&mockUserRepo{}, UserConfig{UserRegistrationEnabled: true, AdminRegistrationEnabled: true})
	info, err := svc.Register(context.Background(), models.RegisterRequest{Username: "root", Password: "Str0ngPass!", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)
}

func TestRegisterDisabled(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, UserConfig{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: "Str0ngPass!"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestRegisterConflict(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{Username: "alice"}}
	svc := newUserService(repo, UserConfig{UserRegistrationEnabled: true})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: "Str0ngPass!"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestRegisterWeakPassword(t *testing.T) {
	svc := newUserService(&mockUserRepo{}, UserConfig{UserRegistrationEnabled: true})

	for _, password := range []string{"short1!A", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSymbols11"} {
		_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: password})
		if password == "short1!A" {
			// eight characters with all classes is the floor, this one passes
			assert.NoError(t, err)
			continue
		}
		assert.True(t, appErrors.HasCode(err, appErrors.ErrWeakPassword), "password %q should be rejected", password)
	}
}

func TestChangePassword(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Username: "alice", PasswordHash: hashedPassword(t, "Old-Pass1")}}
	svc := newUserService(repo, UserConfig{UserRegistrationEnabled: true})

	err := svc.ChangePassword(context.Background(), "alice", models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "New-Pass1"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))

	err = svc.ChangePassword(context.Background(), "alice", models.ChangePasswordRequest{CurrentPassword: "Old-Pass1", NewPassword: "New-Pass1"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordSet), []byte("New-Pass1")))
}

func TestTwoFactorLifecycle(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Username: "alice", PasswordHash: hashedPassword(t, "Str0ngPass!")}}
	svc := newUserService(repo, UserConfig{UserRegistrationEnabled: true})

	enabled, err := svc.TwoFactorEnabled(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, enabled)

	key, err := svc.GenerateTwoFactorKey(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, key.AuthenticatorKey)
	assert.Equal(t, key.AuthenticatorKey, repo.user.TwoFactorSecret)

	code, err := totp.GenerateCode(key.AuthenticatorKey, time.Now())
	require.NoError(t, err)

	res, err := svc.EnableTwoFactor(context.Background(), "alice", models.TwoFactorEnableRequest{Password: "Str0ngPass!", Code: code})
	require.NoError(t, err)
	assert.Len(t, res.RecoveryCodes, recoveryCodeCount)
	assert.Len(t, repo.codeHashes, recoveryCodeCount)
	for _, rc := range res.RecoveryCodes {
		assert.Contains(t, rc, "-")
		assert.False(t, isAllDigits(strings.ReplaceAll(rc, "-", "")))
	}
	assert.True(t, repo.user.TwoFactorEnabled)

	// enrolling again while enabled is a conflict
	_, err = svc.GenerateTwoFactorKey(context.Background(), "alice")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTwoFactorEnabled))

	err = svc.DisableTwoFactor(context.Background(), "alice", "wrong")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))

	err = svc.DisableTwoFactor(context.Background(), "alice", "Str0ngPass!")
	require.NoError(t, err)
	assert.False(t, repo.user.TwoFactorEnabled)
	assert.Empty(t, repo.codeHashes)
}

func TestEnableTwoFactorRejectsBadCode(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Username: "alice", PasswordHash: hashedPassword(t, "Str0ngPass!")}}
	svc := newUserService(repo, UserConfig{UserRegistrationEnabled: true})

	_, err := svc.GenerateTwoFactorKey(context.Background(), "alice")
	require.NoError(t, err)

	_, err = svc.EnableTwoFactor(context.Background(), "alice", models.TwoFactorEnableRequest{Password: "Str0ngPass!", Code: "000000"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
	assert.False(t, repo.user.TwoFactorEnabled)
}

func TestDeleteUser(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Username: "alice"}}
	svc := newUserService(repo, UserConfig{})

	require.NoError(t, svc.Delete(context.Background(), "alice"))
	assert.True(t, repo.deleted)

	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
