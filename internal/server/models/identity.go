package models

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/dmitrijs2005/scams/internal/roles"
)

// PasswordHasher turns a plaintext password into a stored digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Identity is a registered campus user as kept by the credential store.
//
// ResetPasswordToken and ResetPasswordExpires are either both nil or both
// set; use SetResetToken and ClearResetToken rather than assigning them.
type Identity struct {
	ID                   string
	Email                string
	Name                 string
	PasswordHash         string
	Role                 roles.Role
	CreatedAt            time.Time
	UpdatedAt            time.Time
	LastLogin            *time.Time
	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewIdentity builds an unsaved identity with normalized fields and a
// hashed password.
func NewIdentity(email, name, password string, role roles.Role, h PasswordHasher, now time.Time) (*Identity, error) {
	i := &Identity{
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := i.SetPassword(h, password, now); err != nil {
		return nil, err
	}
	return i, nil
}

// SetPassword hashes plaintext and replaces the digest.
func (i *Identity) SetPassword(h PasswordHasher, plaintext string, now time.Time) error {
	digest, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	i.ReplaceDigest(digest, now)
	return nil
}

// ReplaceDigest stores an already computed digest.
func (i *Identity) ReplaceDigest(digest string, now time.Time) {
	i.PasswordHash = digest
	i.UpdatedAt = now
}

func (i *Identity) SetResetToken(token string, expires time.Time, now time.Time) {
	i.ResetPasswordToken = &token
	i.ResetPasswordExpires = &expires
	i.UpdatedAt = now
}

func (i *Identity) ClearResetToken(now time.Time) {
	i.ResetPasswordToken = nil
	i.ResetPasswordExpires = nil
	i.UpdatedAt = now
}

// ResetTokenMatches reports whether token is the stored reset token and the
// stored expiry is still in the future.
func (i *Identity) ResetTokenMatches(token string, now time.Time) bool {
	if i.ResetPasswordToken == nil || i.ResetPasswordExpires == nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*i.ResetPasswordToken), []byte(token)) != 1 {
		return false
	}
	return i.ResetPasswordExpires.After(now)
}

func (i *Identity) MarkLogin(now time.Time) {
	i.LastLogin = &now
	i.UpdatedAt = now
}

// PublicIdentity is the part of an identity that travels in session tokens
// and login responses.
type PublicIdentity struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  roles.Role `json:"role"`
}

// Profile is returned by the current-user endpoint. It never carries the
// digest or the reset token.
type Profile struct {
	PublicIdentity
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{ID: i.ID, Email: i.Email, Name: i.Name, Role: i.Role}
}

func (i *Identity) Profile() Profile {
	return Profile{
		PublicIdentity: i.Public(),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		LastLogin:      i.LastLogin,
	}
}
