// Package identities stores campus identities. Three interchangeable
// backends implement Repository: MongoDB (the default document store),
// PostgreSQL, and an in-memory map used by tests and local runs.
package identities

import (
	"context"
	"time"

	"github.com/dmitrijs2005/scams/internal/server/models"
)

// Repository is the credential store contract. Every write touches only
// the fields its operation owns.
//
//   - Create assigns an ID and fails with common.ErrorDuplicateKey when the
//     email is taken.
//   - FindByEmail and FindByID fail with common.ErrorNotFound.
//   - RecordLogin sets the last-login time.
//   - SetResetToken stores a reset token and its expiry together.
//   - UpdatePassword replaces the digest and leaves any reset token alone.
//   - ConsumeResetToken replaces the digest and removes the reset fields, but
//     only while token is the stored one and has not expired at now.
//     Otherwise it fails with common.ErrorNotFound.
//   - ClearExpiredResetTokens removes reset fields whose expiry is before
//     now and returns how many identities changed.
//
// The single-record writes fail with common.ErrorNotFound for unknown IDs
// and stamp the updated-at time with at.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id, token string, expires, at time.Time) error
	UpdatePassword(ctx context.Context, id, digest string, at time.Time) error
	ConsumeResetToken(ctx context.Context, id, token, digest string, now time.Time) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
