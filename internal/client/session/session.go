// Package session tracks who is signed in to the CLI.
//
// A Session starts Unresolved. Resolve moves it to Anonymous or
// Authenticated depending on whether a persisted token is still accepted by
// the server. Login moves Anonymous to Authenticated; Logout, or any
// protected call the server rejects with 401, moves it back.
//
// Mutating operations raise the Pending flag while their request is in
// flight and always lower it when they return. They report the outcome
// through the Notifier and also return any error to the caller. Operations
// are not serialized: when two overlap the last response wins.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/scams/internal/client/client"
	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/logging"
)

type State int

const (
	Unresolved State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// Notification is a short human-readable outcome, shown once.
type Notification struct {
	Title       string
	Description string
	Failure     bool
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Snapshot is a point-in-time copy of the session, safe to hand to code
// that must not change it.
type Snapshot struct {
	State    State
	Identity *models.Identity
	Pending  bool
}

type Session struct {
	api    client.Client
	store  Store
	notify Notifier
	logger logging.Logger

	mu       sync.RWMutex
	state    State
	identity *models.Identity
	pending  bool
}

// New returns an Unresolved session. A nil notifier drops notifications and
// a nil logger discards log lines.
func New(api client.Client, store Store, notify Notifier, logger logging.Logger) *Session {
	if notify == nil {
		notify = NotifierFunc(func(Notification) {})
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Session{
		api:    api,
		store:  store,
		notify: notify,
		logger: logger.With("module", "session"),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{State: s.state, Pending: s.pending}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

func (s *Session) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

func (s *Session) setPending(p bool) {
	s.mu.Lock()
	s.pending = p
	s.mu.Unlock()
}

// begin raises the pending flag and returns the func that lowers it, for
// use as `defer s.begin()()`.
func (s *Session) begin() func() {
	s.setPending(true)
	return func() { s.setPending(false) }
}

func (s *Session) become(state State, identity *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.identity = identity
}

// Resolve reads the persisted token and asks the server who it belongs to.
// Any failure leaves the session Anonymous with the stored token removed;
// the error is returned so the caller can tell the user why.
func (s *Session) Resolve(ctx context.Context) error {
	token, _, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "load session", "error", err)
		s.become(Anonymous, nil)
		return err
	}
	if token == "" {
		s.become(Anonymous, nil)
		return nil
	}

	s.api.SetToken(token)
	p, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Info(ctx, "stored session rejected", "error", err)
		s.drop(ctx)
		return err
	}

	id := p.Identity
	if err := s.store.Save(ctx, token, id); err != nil {
		s.logger.Warn(ctx, "refresh stored identity", "error", err)
	}
	s.become(Authenticated, &id)
	return nil
}

// drop forgets the session locally and on disk.
func (s *Session) drop(ctx context.Context) {
	s.api.SetToken("")
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn(ctx, "clear stored session", "error", err)
	}
	s.become(Anonymous, nil)
}

func (s *Session) fail(ctx context.Context, title string, err error) error {
	s.logger.Warn(ctx, title, "error", err)
	s.notify.Notify(Notification{Title: title, Description: Describe(err), Failure: true})
	return err
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	defer s.begin()()

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(ctx, "Login failed", err)
	}
	if err := s.store.Save(ctx, res.Token, res.User); err != nil {
		return s.fail(ctx, "Login failed", err)
	}

	s.api.SetToken(res.Token)
	user := res.User
	s.become(Authenticated, &user)

	s.notify.Notify(Notification{Title: "Login successful", Description: "Welcome back, " + user.Name + "!"})
	return nil
}

// Register creates the account but does not sign in.
func (s *Session) Register(ctx context.Context, in models.RegisterRequest) error {
	defer s.begin()()

	if _, err := s.api.Register(ctx, in); err != nil {
		return s.fail(ctx, "Registration failed", err)
	}
	s.notify.Notify(Notification{Title: "Registration successful", Description: "You can now login with your new account"})
	return nil
}

func (s *Session) Logout(ctx context.Context) {
	s.drop(ctx)
	s.notify.Notify(Notification{Title: "Logged out", Description: "You have been successfully logged out"})
}

func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	defer s.begin()()

	if _, err := s.api.ForgotPassword(ctx, email); err != nil {
		return s.fail(ctx, "Password reset failed", err)
	}
	s.notify.Notify(Notification{Title: "Password reset email sent", Description: "Please check your email for a link to reset your password"})
	return nil
}

func (s *Session) ResetPassword(ctx context.Context, resetToken, password string) error {
	defer s.begin()()

	if _, err := s.api.ResetPassword(ctx, resetToken, password); err != nil {
		return s.fail(ctx, "Password reset failed", err)
	}
	s.notify.Notify(Notification{Title: "Password reset successful", Description: "Your password has been updated. You can now login with your new password"})
	return nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	defer s.begin()()

	err := s.Do(ctx, func(ctx context.Context, api client.Client) error {
		_, err := api.ChangePassword(ctx, current, next)
		return err
	})
	if err != nil {
		return s.fail(ctx, "Password change failed", err)
	}
	s.notify.Notify(Notification{Title: "Password changed", Description: "Your password has been successfully updated"})
	return nil
}

// Do runs a protected call. A 401 from the server ends the session before
// the error is returned.
func (s *Session) Do(ctx context.Context, fn func(context.Context, client.Client) error) error {
	err := fn(ctx, s.api)
	if errors.Is(err, client.ErrUnauthorized) {
		s.drop(ctx)
	}
	return err
}

// Me fetches the current profile.
func (s *Session) Me(ctx context.Context) (*models.Profile, error) {
	var p *models.Profile
	err := s.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		p, err = api.Me(ctx)
		return err
	})
	return p, err
}

// Describe renders err the way the user should read it: field messages for
// validation failures, the server's message otherwise.
func Describe(err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			msgs = append(msgs, fe.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	if errors.Is(err, client.ErrUnavailable) {
		return "Server is unavailable, try again later"
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return "Your session has expired, please log in again"
	}
	return err.Error()
}
