package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

// RevocationStore is the revocation set consulted on every validation.
// Implemented by the database store so revocations share the users'
// consistency domain.
type RevocationStore interface {
	RevokeToken(jti string, userID int64, expiresAt time.Time) error
	IsTokenRevoked(jti string) (bool, error)
}

// TokenClaims represents the claims in a bearer token
type TokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues, validates and revokes bearer tokens. The signing
// secret is fixed at construction and never changes for the process
// lifetime.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
	revoked   RevocationStore
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secretKey string, ttl time.Duration, revoked RevocationStore) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		revoked:   revoked,
	}
}

// Issue creates a signed token for the user, valid for the configured TTL
func (tm *TokenManager) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// Validate checks a raw token and returns the subject user ID. The
// signature is verified before anything else: a tampered or malformed
// token is rejected as invalid without an expiry or revocation lookup.
// Expiry is checked next, and only then the revocation set.
func (tm *TokenManager) Validate(rawToken string) (int64, error) {
	claims, err := tm.parse(rawToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	revoked, err := tm.revoked.IsTokenRevoked(claims.ID)
	if err != nil {
		return 0, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return 0, ErrRevokedToken
	}

	return claims.UserID, nil
}

// Revoke adds the token to the revocation set, keyed by its JTI and bounded
// by its own expiry. An already-expired token revokes successfully so that
// logout stays idempotent; a token that fails signature verification does
// not, since its claims cannot be trusted.
func (tm *TokenManager) Revoke(rawToken string) error {
	claims, err := tm.parse(rawToken, jwt.WithoutClaimsValidation())
	if err != nil {
		return ErrInvalidToken
	}

	return tm.revoked.RevokeToken(claims.ID, claims.UserID, claims.ExpiresAt.Time)
}

func (tm *TokenManager) parse(rawToken string, opts ...jwt.ParserOption) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(rawToken, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
