// Package models defines the client-side views of what the SCAMS API
// returns. Field names follow the API's JSON.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/scams/internal/roles"
)

// Identity is the public part of a signed-in user, as carried in the login
// response and persisted next to the session token.
type Identity struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  roles.Role `json:"role"`
}

// Initials returns the upper-cased first letter of every space-separated
// word in the name: "Jane Smith" gives "JS".
func (i Identity) Initials() string {
	var b strings.Builder
	for _, word := range strings.Split(i.Name, " ") {
		if word == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Profile is the /api/auth/me response.
type Profile struct {
	Identity
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
