// Package auth implements credential primitives for the API: bcrypt password
// digests and HS256 session and reset tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTokenValidity = 24 * time.Hour
	ResetTokenValidity   = time.Hour
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	User models.PublicIdentity `json:"user"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session and reset tokens with one shared
// HMAC secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source used for issuing and expiry checks.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// IssueSession mints a token carrying the public identity, valid for one day.
func (t *TokenIssuer) IssueSession(id models.PublicIdentity) (string, error) {
	now := t.now()
	return t.sign(SessionClaims{
		User: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenValidity)),
		},
	})
}

// IssueResetToken mints a one-hour reset token for userID and returns its
// expiry so the caller can store the same deadline.
func (t *TokenIssuer) IssueResetToken(userID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(ResetTokenValidity)
	tok, err := t.sign(resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, expires, nil
}

// VerifySession checks signature, algorithm and expiry. Every failure
// matches common.ErrInvalidToken; expiry additionally matches
// common.ErrTokenExpired.
func (t *TokenIssuer) VerifySession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.User.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// VerifyReset returns the identity ID a valid reset token was issued for.
func (t *TokenIssuer) VerifyReset(token string) (string, error) {
	claims := &resetClaims{}
	if err := t.parse(token, claims); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (t *TokenIssuer) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
