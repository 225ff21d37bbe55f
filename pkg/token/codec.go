package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuerAudience is stamped into issued tokens when no issuer or
// audience is configured.
const DefaultIssuerAudience = "Default"

// Claims is the signed payload carried by both access and refresh tokens.
type Claims struct {
	Username string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed bearer tokens. Verification is pure: it
// performs no I/O and converts every parse fault into a negative result.
type Codec struct {
	issuer   string
	audience string
}

// NewCodec builds a codec for the configured issuer and audience. Blank
// values disable the corresponding verification check and substitute
// DefaultIssuerAudience into issued tokens.
func NewCodec(issuer, audience string) *Codec {
	return &Codec{issuer: issuer, audience: audience}
}

// Issue creates a token signed with HMAC-SHA512 carrying the username and
// role, valid from now (UTC) for the given lifetime.
func (c *Codec) Issue(signingKey []byte, username, role string, lifetime time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuerOrDefault(),
			Audience:  jwt.ClaimStrings{c.audienceOrDefault()},
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(signingKey)
}

// Verify checks the signature, expiry and, when configured, the issuer and
// audience of the token. It reports false for any malformed, expired or
// wrongly signed input instead of returning an error.
func (c *Codec) Verify(tokenString string, signingKey []byte) (*Claims, bool) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	return claims, true
}

func (c *Codec) issuerOrDefault() string {
	if c.issuer == "" {
		return DefaultIssuerAudience
	}
	return c.issuer
}

func (c *Codec) audienceOrDefault() string {
	if c.audience == "" {
		return DefaultIssuerAudience
	}
	return c.audience
}
