package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyringGeneratesWhenSecretBlank(t *testing.T) {
	keyring, err := NewKeyring("", "   ")
	require.NoError(t, err)

	assert.Len(t, keyring.Access(), generatedKeyLength)
	assert.Len(t, keyring.Refresh(), generatedKeyLength)
	assert.NotEqual(t, keyring.Access(), keyring.Refresh())
}

func TestNewKeyringUsesConfiguredSecrets(t *testing.T) {
	keyring, err := NewKeyring("access-secret", "refresh-secret")
	require.NoError(t, err)

	assert.Equal(t, []byte("access-secret"), keyring.Access())
	assert.Equal(t, []byte("refresh-secret"), keyring.Refresh())
}

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	codec := NewCodec("giron", "giron-clients")
	key := []byte("signing-key")

	tokenString, err := codec.Issue(key, "alice", "User", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, ok := codec.Verify(tokenString, key)
	require.True(t, ok)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "User", claims.Role)
	assert.Equal(t, "giron", claims.Issuer)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	codec := NewCodec("", "")
	keyring, err := NewKeyring("", "")
	require.NoError(t, err)

	accessToken, err := codec.Issue(keyring.Access(), "alice", "User", time.Minute)
	require.NoError(t, err)

	_, ok := codec.Verify(accessToken, keyring.Refresh())
	assert.False(t, ok)

	refreshToken, err := codec.Issue(keyring.Refresh(), "alice", "User", time.Minute)
	require.NoError(t, err)

	_, ok = codec.Verify(refreshToken, keyring.Access())
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := NewCodec("", "")
	key := []byte("signing-key")

	tokenString, err := codec.Issue(key, "alice", "User", -time.Minute)
	require.NoError(t, err)

	_, ok := codec.Verify(tokenString, key)
	assert.False(t, ok)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	key := []byte("signing-key")

	tokenString, err := NewCodec("issuer-a", "").Issue(key, "alice", "User", time.Minute)
	require.NoError(t, err)

	_, ok := NewCodec("issuer-b", "").Verify(tokenString, key)
	assert.False(t, ok)
}

func TestVerifyRejectsAudienceMismatch(t *testing.T) {
	key := []byte("signing-key")

	tokenString, err := NewCodec("", "aud-a").Issue(key, "alice", "User", time.Minute)
	require.NoError(t, err)

	_, ok := NewCodec("", "aud-b").Verify(tokenString, key)
	assert.False(t, ok)
}

func TestVerifySkipsIssuerAudienceWhenUnconfigured(t *testing.T) {
	key := []byte("signing-key")
	codec := NewCodec("", "")

	tokenString, err := codec.Issue(key, "alice", "User", time.Minute)
	require.NoError(t, err)

	claims, ok := codec.Verify(tokenString, key)
	require.True(t, ok)
	assert.Equal(t, DefaultIssuerAudience, claims.Issuer)
}

func TestVerifyRejectsGarbageInput(t *testing.T) {
	codec := NewCodec("", "")

	for _, input := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, ok := codec.Verify(input, []byte("signing-key"))
		assert.False(t, ok, "input %q should not verify", input)
	}
}
