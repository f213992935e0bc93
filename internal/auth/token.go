package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ScopeAuth is the only token scope issued today.
const ScopeAuth = "auth"

// ErrInvalidToken is returned by Verify for any token that does not check
// out: bad signature, malformed encoding, wrong algorithm, or expired.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the payload carried by a signed token.
type TokenClaims struct {
	UserID string
	Scope  string
}

type signedClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer tokens with an HS256 secret. A zero
// ttl issues tokens without an expiry claim.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// Issue produces a signed token binding userID to scope.
func (c *TokenCodec) Issue(userID, scope string) (string, error) {
	claims := signedClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
			// unique per token so two logins in the same second still get
			// distinct strings and can be revoked independently
			ID: uuid.NewString(),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(c.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify validates the signature and decodes the claims. Arbitrary garbage
// input resolves to ErrInvalidToken, never a panic.
func (c *TokenCodec) Verify(token string) (TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &signedClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*signedClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidToken
	}

	return TokenClaims{UserID: claims.Subject, Scope: claims.Scope}, nil
}
