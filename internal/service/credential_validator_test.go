package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giron-dev/giron-api/internal/models"
	appErrors "github.com/giron-dev/giron-api/pkg/errors"
)

func twoFactorUser(t *testing.T) (*models.User, string) {
	t.Helper()
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "Giron", AccountName: "alice"})
	require.NoError(t, err)
	return &models.User{
		ID:               "u1",
		Username:         "alice",
		PasswordHash:     hashedPassword(t, "Str0ngPass!"),
		Role:             models.RoleUser,
		TwoFactorEnabled: true,
		TwoFactorSecret:  key.Secret(),
	}, key.Secret()
}

func TestCheckSkipsTwoFactorWhenDisabled(t *testing.T) {
	repo := &mockSessionRepo{user: &models.User{ID: "u1", Username: "alice", PasswordHash: hashedPassword(t, "Str0ngPass!"), Role: models.RoleUser}}
	v := NewCredentialValidator(repo, zap.NewNop())

	user, err := v.Check(context.Background(), "alice", "Str0ngPass!", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestCheckRequiresCodeWhenTwoFactorEnabled(t *testing.T) {
	user, _ := twoFactorUser(t)
	v := NewCredentialValidator(&mockSessionRepo{user: user}, zap.NewNop())

	_, err := v.Check(context.Background(), "alice", "Str0ngPass!", "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestCheckAcceptsValidTimeBasedCode(t *testing.T) {
	user, secret := twoFactorUser(t)
	v := NewCredentialValidator(&mockSessionRepo{user: user}, zap.NewNop())

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	got, err := v.Check(context.Background(), "alice", "Str0ngPass!", code)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestCheckRejectsBogusTimeBasedCode(t *testing.T) {
	user, _ := twoFactorUser(t)
	v := NewCredentialValidator(&mockSessionRepo{user: user}, zap.NewNop())

	_, err := v.Check(context.Background(), "alice", "Str0ngPass!", "000000")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestCheckRecoveryCodeIsSingleUse(t *testing.T) {
	user, _ := twoFactorUser(t)
	repo := &mockSessionRepo{
		user:               user,
		recoveryCodeHashes: map[string]bool{hashRecoveryCode("abcde-fghij"): true},
	}
	v := NewCredentialValidator(repo, zap.NewNop())

	got, err := v.Check(context.Background(), "alice", "Str0ngPass!", "abcde-fghij")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = v.Check(context.Background(), "alice", "Str0ngPass!", "abcde-fghij")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestCheckRejectsUnknownRecoveryCode(t *testing.T) {
	user, _ := twoFactorUser(t)
	v := NewCredentialValidator(&mockSessionRepo{user: user}, zap.NewNop())

	_, err := v.Check(context.Background(), "alice", "Str0ngPass!", "nope!-nope!")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}
