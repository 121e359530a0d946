// Package guard decides what a gated screen shows for the current session:
// a loading indicator, a redirect to the login screen, or the screen itself.
package guard

import "github.com/dmitrijs2005/scams/internal/client/session"

// LoginPath is where anonymous users are sent.
const LoginPath = "/login"

type Kind int

const (
	Loading Kind = iota
	Redirect
	Render
)

func (k Kind) String() string {
	switch k {
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "loading"
	}
}

// Decision is the outcome for one location. To and From are set only for
// Redirect; From keeps the requested location but login does not act on it.
type Decision struct {
	Kind Kind
	To   string
	From string
}

// Evaluate maps a session snapshot to exactly one decision.
func Evaluate(snap session.Snapshot, location string) Decision {
	switch snap.State {
	case session.Authenticated:
		if snap.Identity != nil {
			return Decision{Kind: Render}
		}
		return Decision{Kind: Redirect, To: LoginPath, From: location}
	case session.Anonymous:
		return Decision{Kind: Redirect, To: LoginPath, From: location}
	default:
		return Decision{Kind: Loading}
	}
}
