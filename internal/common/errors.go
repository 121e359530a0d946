// Package common defines shared constants and sentinel errors used across
// client and server layers of SCAMS. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrorDuplicateKey = errors.New("duplicate key")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Account errors. The text of each one is what API callers see.
	ErrEmailInUse               = errors.New("Email already in use")
	ErrInvalidCredentials       = errors.New("Invalid credentials")
	ErrUserNotFound             = errors.New("User not found")
	ErrEmailNotFound            = errors.New("Email not found")
	ErrInvalidOrExpiredToken    = errors.New("Invalid or expired token")
	ErrCurrentPasswordIncorrect = errors.New("Current password is incorrect")

	// Room errors.
	ErrRoomNotFound = errors.New("Room not found")
)
