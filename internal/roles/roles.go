// Package roles holds the closed set of campus roles shared by the server
// (stored on identities, embedded in session tokens) and the CLI (navigation
// and command gating).
package roles

import "strings"

type Role string

const (
	Student  Role = "student"
	Lecturer Role = "lecturer"
	Staff    Role = "staff"
	Security Role = "security"
	Admin    Role = "admin"
	Guest    Role = "guest"
)

// Default is assigned when a registration does not name a role.
const Default = Student

// All lists every role in declaration order.
var All = []Role{Student, Lecturer, Staff, Security, Admin, Guest}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, k := range All {
		if r == k {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Parse converts raw input to a Role. Empty input yields Default; anything
// outside the set yields ok=false.
func Parse(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, true
	}
	r := Role(s)
	return r, r.Valid()
}

// In reports whether r is a member of allowed.
func In(r Role, allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Except returns All without the listed roles, preserving order.
func Except(excluded ...Role) []Role {
	out := make([]Role, 0, len(All))
	for _, r := range All {
		if !In(r, excluded...) {
			out = append(out, r)
		}
	}
	return out
}
