package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

var alice = models.PublicIdentity{ID: "u-1", Email: "alice@campus.edu", Name: "Alice", Role: roles.Lecturer}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndVerifySession_Success(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("super-secret")

	tok, err := ti.IssueSession(alice)
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	claims, err := ti.VerifySession(tok)
	if err != nil {
		t.Fatalf("VerifySession error: %v", err)
	}
	if claims.User != alice {
		t.Fatalf("identity mismatch: got %+v want %+v", claims.User, alice)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != SessionTokenValidity {
		t.Fatalf("session lifetime: got %v want %v", got, SessionTokenValidity)
	}
}

func TestVerifySession_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	tok, err := NewTokenIssuer("secret").WithClock(fixedClock(issued)).IssueSession(alice)
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	later := NewTokenIssuer("secret").WithClock(fixedClock(issued.Add(SessionTokenValidity + time.Second)))
	_, err = later.VerifySession(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	stillValid := NewTokenIssuer("secret").WithClock(fixedClock(issued.Add(SessionTokenValidity - time.Minute)))
	if _, err := stillValid.VerifySession(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
}

func TestVerifySession_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer("right-secret").IssueSession(alice)
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	_, err = NewTokenIssuer("wrong-secret").VerifySession(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
	if errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("bad signature must not look like expiry: %v", err)
	}
}

func TestVerifySession_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("k").VerifySession("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestVerifySession_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := SessionClaims{
		User: alice,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenIssuer("k").VerifySession(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

func TestVerifySession_RequiresExpiry(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{User: alice}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("k").VerifySession(tok); err == nil {
		t.Fatal("expected token without exp to be rejected")
	}
}

func TestResetToken_RoundTripAndLifetime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 5, 10, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer("k").WithClock(fixedClock(now))

	tok, expires, err := ti.IssueResetToken("u-9")
	if err != nil {
		t.Fatalf("IssueResetToken error: %v", err)
	}
	if !expires.Equal(now.Add(ResetTokenValidity)) {
		t.Fatalf("expiry: got %v", expires)
	}

	id, err := ti.VerifyReset(tok)
	if err != nil || id != "u-9" {
		t.Fatalf("VerifyReset: id=%q err=%v", id, err)
	}

	late := NewTokenIssuer("k").WithClock(fixedClock(now.Add(ResetTokenValidity + time.Second)))
	if _, err := late.VerifyReset(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected expired reset token, got %v", err)
	}
}

func TestResetToken_UniquePerIssue(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("k").WithClock(fixedClock(time.Now()))
	a, _, err := ti.IssueResetToken("u")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := ti.IssueResetToken("u")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two reset tokens issued in the same instant must differ")
	}
}

func TestVerifyReset_SessionTokenIsNotAResetToken(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("k")
	session, err := ti.IssueSession(alice)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ti.VerifyReset(session); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected session token to fail reset verification, got %v", err)
	}
}
