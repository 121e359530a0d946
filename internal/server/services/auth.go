// Package services contains server-side business logic. AuthService covers
// account registration, login and the password lifecycle; RoomService and
// DashboardService serve the campus room data.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/auth"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/repositories/identities"
)

const minPasswordLength = 6

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string                `json:"token"`
	User  models.PublicIdentity `json:"user"`
}

// ResetNotifier delivers a freshly minted reset token to the account owner.
type ResetNotifier interface {
	SendResetToken(ctx context.Context, email, token string, expires time.Time) error
}

// LogNotifier only records that a reset was requested. The token itself is
// logged at debug level so it can be picked up in development.
type LogNotifier struct {
	Logger logging.Logger
}

func (n LogNotifier) SendResetToken(ctx context.Context, email, token string, expires time.Time) error {
	n.Logger.Info(ctx, "password reset requested", "email", email, "expires", expires)
	n.Logger.Debug(ctx, "password reset token", "email", email, "token", token)
	return nil
}

// AuthService implements the account operations on top of an identity
// repository.
type AuthService struct {
	identities identities.Repository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenIssuer
	notifier   ResetNotifier
	logger     logging.Logger
	now        func() time.Time
}

func NewAuthService(repo identities.Repository, h *auth.PasswordHasher, t *auth.TokenIssuer, n ResetNotifier, l logging.Logger) *AuthService {
	if l == nil {
		l = logging.Nop{}
	}
	if n == nil {
		n = LogNotifier{Logger: l}
	}
	return &AuthService{
		identities: repo,
		hasher:     h,
		tokens:     t,
		notifier:   n,
		logger:     l.With("module", "auth_service"),
		now:        time.Now,
	}
}

// WithClock replaces the time source used for record timestamps.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an account. It never logs the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	var v common.ValidationError
	email := checkEmail(&v, in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.Add("name", in.Name, "Name is required")
	}
	checkPassword(&v, "password", in.Password)
	role, ok := roles.Parse(in.Role)
	if !ok {
		v.Add("role", in.Role, "Valid role is required")
	}
	if err := v.Err(); err != nil {
		return err
	}

	_, err := s.identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return common.ErrEmailInUse
	case !errors.Is(err, common.ErrorNotFound):
		return s.internal(ctx, "register: lookup", err)
	}

	identity, err := models.NewIdentity(email, name, in.Password, role, s.hasher, s.now())
	if err != nil {
		return s.internal(ctx, "register: hash", err)
	}
	if _, err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, common.ErrorDuplicateKey) {
			return common.ErrEmailInUse
		}
		return s.internal(ctx, "register: create", err)
	}

	s.logger.Info(ctx, "user registered", "email", email, "role", role)
	return nil
}

// Login checks credentials and mints a session token. An unknown email and a
// wrong password produce the same error, and both run one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var v common.ValidationError
	email = checkEmail(&v, email)
	if password == "" {
		v.Add("password", "", "Password is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.BurnVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "login: lookup", err)
	}
	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	if err := s.identities.RecordLogin(ctx, identity.ID, s.now()); err != nil {
		return nil, s.internal(ctx, "login: update", err)
	}

	token, err := s.tokens.IssueSession(identity.Public())
	if err != nil {
		return nil, s.internal(ctx, "login: sign", err)
	}
	return &LoginResult{Token: token, User: identity.Public()}, nil
}

// CurrentUser loads the profile of the session owner.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.Profile, error) {
	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, s.internal(ctx, "me: lookup", err)
	}
	p := identity.Profile()
	return &p, nil
}

// ForgotPassword stores a one-hour reset token on the account and hands it
// to the notifier.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var v common.ValidationError
	email = checkEmail(&v, email)
	if err := v.Err(); err != nil {
		return err
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrEmailNotFound
		}
		return s.internal(ctx, "forgot: lookup", err)
	}

	token, expires, err := s.tokens.IssueResetToken(identity.ID)
	if err != nil {
		return s.internal(ctx, "forgot: sign", err)
	}
	if err := s.identities.SetResetToken(ctx, identity.ID, token, expires, s.now()); err != nil {
		return s.internal(ctx, "forgot: update", err)
	}

	if err := s.notifier.SendResetToken(ctx, identity.Email, token, expires); err != nil {
		s.logger.Warn(ctx, "reset notification failed", "email", identity.Email, "error", err)
	}
	return nil
}

// ResetPassword replaces the password of the account the reset token was
// minted for. The token must verify and must equal the copy stored on the
// account, which is cleared on success.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	var v common.ValidationError
	if strings.TrimSpace(token) == "" {
		v.Add("token", token, "Token is required")
	}
	checkPassword(&v, "password", password)
	if err := v.Err(); err != nil {
		return err
	}

	userID, err := s.tokens.VerifyReset(token)
	if err != nil {
		return common.ErrInvalidOrExpiredToken
	}

	identity, err := s.identities.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return s.internal(ctx, "reset: lookup", err)
	}

	now := s.now()
	if !identity.ResetTokenMatches(token, now) {
		return common.ErrInvalidOrExpiredToken
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return s.internal(ctx, "reset: hash", err)
	}
	if err := s.identities.ConsumeResetToken(ctx, identity.ID, token, digest, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return s.internal(ctx, "reset: update", err)
	}

	s.logger.Info(ctx, "password reset", "user", identity.ID)
	return nil
}

// ChangePassword replaces the password of the session owner after checking
// the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	var v common.ValidationError
	if current == "" {
		v.Add("currentPassword", "", "Current password is required")
	}
	checkPassword(&v, "newPassword", next)
	if err := v.Err(); err != nil {
		return err
	}

	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return s.internal(ctx, "change password: lookup", err)
	}
	if !s.hasher.Verify(current, identity.PasswordHash) {
		return common.ErrCurrentPasswordIncorrect
	}
	digest, err := s.hasher.Hash(next)
	if err != nil {
		return s.internal(ctx, "change password: hash", err)
	}
	if err := s.identities.UpdatePassword(ctx, identity.ID, digest, s.now()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return s.internal(ctx, "change password: update", err)
	}
	return nil
}

// ClearExpiredResetTokens removes reset tokens whose expiry has passed.
func (s *AuthService) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.identities.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		return 0, s.internal(ctx, "purge reset tokens", err)
	}
	return n, nil
}

func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op, "error", err)
	return common.ErrorInternal
}

// checkEmail validates a bare address and returns it normalized.
func checkEmail(v *common.ValidationError, raw string) string {
	email := models.NormalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		v.Add("email", raw, "Please include a valid email")
	}
	return email
}

func checkPassword(v *common.ValidationError, param, password string) {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		v.Add(param, "", "Password must be at least 6 characters")
	case len(password) > auth.MaxPasswordBytes:
		v.Add(param, "", "Password must be at most 72 bytes long")
	}
}
