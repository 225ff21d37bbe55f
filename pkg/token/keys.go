package token

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// generatedKeyLength is the size of signing keys created when no secret is
// configured. 512 bytes comfortably exceeds the HMAC-SHA512 block size.
const generatedKeyLength = 512

// Keyring holds the two symmetric signing keys for the process lifetime.
// Access and refresh tokens are signed with disjoint keys so a token of one
// kind never verifies against the other. Keys are never persisted;
// restarting without configured secrets invalidates all outstanding tokens.
type Keyring struct {
	access  []byte
	refresh []byte
}

// NewKeyring resolves both signing keys. A non-blank secret is used as raw
// bytes, otherwise a cryptographically random key is generated.
func NewKeyring(accessSecret, refreshSecret string) (*Keyring, error) {
	access, err := resolveKey(accessSecret)
	if err != nil {
		return nil, fmt.Errorf("resolve access key: %w", err)
	}

	refresh, err := resolveKey(refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("resolve refresh key: %w", err)
	}

	return &Keyring{access: access, refresh: refresh}, nil
}

// Access returns the access-token signing key.
func (k *Keyring) Access() []byte {
	return k.access
}

// Refresh returns the refresh-token signing key.
func (k *Keyring) Refresh() []byte {
	return k.refresh
}

func resolveKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) != "" {
		return []byte(secret), nil
	}

	key := make([]byte, generatedKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return key, nil
}
