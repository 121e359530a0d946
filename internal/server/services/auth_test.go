package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/auth"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/repositories/identities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type sentReset struct {
	email, token string
	expires      time.Time
}

type recordingNotifier struct {
	sent []sentReset
	err  error
}

func (n *recordingNotifier) SendResetToken(_ context.Context, email, token string, expires time.Time) error {
	n.sent = append(n.sent, sentReset{email, token, expires})
	return n.err
}

type fixture struct {
	svc      *AuthService
	repo     *identities.MemoryRepository
	tokens   *auth.TokenIssuer
	notifier *recordingNotifier
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	repo := identities.NewMemoryRepository()
	tokens := auth.NewTokenIssuer("test-secret").WithClock(c.Now)
	n := &recordingNotifier{}
	svc := NewAuthService(repo, auth.NewPasswordHasher(bcrypt.MinCost), tokens, n, logging.Nop{}).WithClock(c.Now)
	return &fixture{svc: svc, repo: repo, tokens: tokens, notifier: n, clock: c}
}

func (f *fixture) register(t *testing.T, email, password string, role roles.Role) {
	t.Helper()
	require.NoError(t, f.svc.Register(context.Background(), RegisterInput{
		Email: email, Name: "Test User", Password: password, Role: string(role),
	}))
}

func validationParams(t *testing.T, err error) []string {
	t.Helper()
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Param)
	}
	return out
}

func TestRegisterThenLogin_RoleRoundTrip(t *testing.T) {
	for _, r := range roles.All {
		t.Run(string(r), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.register(t, "  Person@Campus.EDU ", "secret1", r)

			res, err := f.svc.Login(ctx, "person@campus.edu", "secret1")
			require.NoError(t, err)
			assert.Equal(t, r, res.User.Role)
			assert.Equal(t, "person@campus.edu", res.User.Email)

			claims, err := f.tokens.VerifySession(res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.User, claims.User)

			stored, err := f.repo.FindByEmail(ctx, "person@campus.edu")
			require.NoError(t, err)
			require.NotNil(t, stored.LastLogin)
			assert.Equal(t, f.clock.Now(), *stored.LastLogin)
			assert.NotEqual(t, "secret1", stored.PasswordHash)
		})
	}
}

func TestRegister_DefaultsToStudent(t *testing.T) {
	f := newFixture(t)
	f.register(t, "s@campus.edu", "secret1", "")

	res, err := f.svc.Login(context.Background(), "s@campus.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, roles.Student, res.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Name: " ", Password: "12345", Role: "dean"})
	assert.Equal(t, []string{"email", "name", "password", "role"}, validationParams(t, err))

	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please include a valid email", ve.Errors[0].Msg)
	assert.Equal(t, "Name is required", ve.Errors[1].Msg)
	assert.Equal(t, "Password must be at least 6 characters", ve.Errors[2].Msg)
	assert.Equal(t, "Valid role is required", ve.Errors[3].Msg)
	assert.Empty(t, ve.Errors[2].Value)
}

func TestRegister_DuplicateEmailLeavesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "dup@campus.edu", "original", roles.Lecturer)

	before, err := f.repo.FindByEmail(ctx, "dup@campus.edu")
	require.NoError(t, err)

	err = f.svc.Register(ctx, RegisterInput{Email: "DUP@campus.edu", Name: "Other", Password: "another", Role: "admin"})
	assert.ErrorIs(t, err, common.ErrEmailInUse)

	after, err := f.repo.FindByEmail(ctx, "dup@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.svc.Login(ctx, "dup@campus.edu", "original")
	assert.NoError(t, err)
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "known@campus.edu", "secret1", roles.Staff)

	_, errUnknown := f.svc.Login(ctx, "ghost@campus.edu", "secret1")
	_, errWrong := f.svc.Login(ctx, "known@campus.edu", "wrong-password")

	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), "", "")
	assert.Equal(t, []string{"email", "password"}, validationParams(t, err))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "me@campus.edu", "secret1", roles.Security)
	res, err := f.svc.Login(ctx, "me@campus.edu", "secret1")
	require.NoError(t, err)

	p, err := f.svc.CurrentUser(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User, p.PublicIdentity)
	assert.NotNil(t, p.LastLogin)

	_, err = f.svc.CurrentUser(ctx, "vanished")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "reset@campus.edu", "oldpass", roles.Student)

	require.NoError(t, f.svc.ForgotPassword(ctx, "Reset@Campus.edu"))
	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "reset@campus.edu", sent.email)
	assert.Equal(t, f.clock.Now().Add(time.Hour), sent.expires)

	stored, err := f.repo.FindByEmail(ctx, "reset@campus.edu")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.Equal(t, sent.token, *stored.ResetPasswordToken)

	require.NoError(t, f.svc.ResetPassword(ctx, sent.token, "newpass"))

	stored, err = f.repo.FindByEmail(ctx, "reset@campus.edu")
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpires)

	_, err = f.svc.Login(ctx, "reset@campus.edu", "oldpass")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "reset@campus.edu", "newpass")
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, sent.token, "thirdpass")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestResetPassword_SupersededTokenFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "twice@campus.edu", "oldpass", roles.Student)

	require.NoError(t, f.svc.ForgotPassword(ctx, "twice@campus.edu"))
	require.NoError(t, f.svc.ForgotPassword(ctx, "twice@campus.edu"))
	require.Len(t, f.notifier.sent, 2)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, f.notifier.sent[0].token, "newpass"), common.ErrInvalidOrExpiredToken)
	assert.NoError(t, f.svc.ResetPassword(ctx, f.notifier.sent[1].token, "newpass"))
}

func TestResetPassword_ExpiredTokenFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "late@campus.edu", "oldpass", roles.Student)
	require.NoError(t, f.svc.ForgotPassword(ctx, "late@campus.edu"))

	f.clock.Advance(time.Hour + time.Second)
	err := f.svc.ResetPassword(ctx, f.notifier.sent[0].token, "newpass")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestResetPassword_ForgedAndMissingToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "forged.token.value", "newpass"), common.ErrInvalidOrExpiredToken)

	err := f.svc.ResetPassword(ctx, "", "123")
	assert.Equal(t, []string{"token", "password"}, validationParams(t, err))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.ForgotPassword(context.Background(), "ghost@campus.edu"), common.ErrEmailNotFound)
	assert.Empty(t, f.notifier.sent)
}

func TestForgotPassword_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	f.register(t, "n@campus.edu", "secret1", roles.Student)

	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "n@campus.edu"))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "chg@campus.edu", "oldpass", roles.Admin)
	res, err := f.svc.Login(ctx, "chg@campus.edu", "oldpass")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, res.User.ID, "not-it", "newpass")
	assert.ErrorIs(t, err, common.ErrCurrentPasswordIncorrect)

	err = f.svc.ChangePassword(ctx, res.User.ID, "", "abc")
	assert.Equal(t, []string{"currentPassword", "newPassword"}, validationParams(t, err))

	err = f.svc.ChangePassword(ctx, "vanished", "oldpass", "newpass")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	require.NoError(t, f.svc.ChangePassword(ctx, res.User.ID, "oldpass", "newpass"))
	_, err = f.svc.Login(ctx, "chg@campus.edu", "oldpass")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "chg@campus.edu", "newpass")
	assert.NoError(t, err)
}

func TestLogin_DoesNotRehashPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "stable@campus.edu", "secret1", roles.Student)

	before, err := f.repo.FindByEmail(ctx, "stable@campus.edu")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "stable@campus.edu", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword(ctx, "stable@campus.edu"))

	after, err := f.repo.FindByEmail(ctx, "stable@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestClearExpiredResetTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "purge@campus.edu", "secret1", roles.Student)
	require.NoError(t, f.svc.ForgotPassword(ctx, "purge@campus.edu"))

	n, err := f.svc.ClearExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(2 * time.Hour)
	n, err = f.svc.ClearExpiredResetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// brokenRepo fails every call with a store error.
type brokenRepo struct{}

var errStore = errors.New("connection reset")

func (brokenRepo) Create(context.Context, *models.Identity) (*models.Identity, error) {
	return nil, errStore
}
func (brokenRepo) FindByEmail(context.Context, string) (*models.Identity, error) {
	return nil, errStore
}
func (brokenRepo) FindByID(context.Context, string) (*models.Identity, error) { return nil, errStore }
func (brokenRepo) RecordLogin(context.Context, string, time.Time) error       { return errStore }
func (brokenRepo) SetResetToken(context.Context, string, string, time.Time, time.Time) error {
	return errStore
}
func (brokenRepo) UpdatePassword(context.Context, string, string, time.Time) error { return errStore }
func (brokenRepo) ConsumeResetToken(context.Context, string, string, string, time.Time) error {
	return errStore
}
func (brokenRepo) ClearExpiredResetTokens(context.Context, time.Time) (int64, error) {
	return 0, errStore
}

func TestStoreFailuresBecomeInternal(t *testing.T) {
	svc := NewAuthService(brokenRepo{}, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenIssuer("k"), nil, nil)
	ctx := context.Background()

	err := svc.Register(ctx, RegisterInput{Email: "a@campus.edu", Name: "A", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = svc.Login(ctx, "a@campus.edu", "secret1")
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = svc.CurrentUser(ctx, "id")
	assert.ErrorIs(t, err, common.ErrorInternal)

	assert.ErrorIs(t, svc.ForgotPassword(ctx, "a@campus.edu"), common.ErrorInternal)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "id", "secret1", "secret2"), common.ErrorInternal)

	_, err = svc.ClearExpiredResetTokens(ctx)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, errStore)
}

// interleavingRepo runs between once, right after the next lookup returns,
// to simulate a concurrent request landing between read and write.
type interleavingRepo struct {
	*identities.MemoryRepository
	between func()
}

func (r *interleavingRepo) fire() {
	if f := r.between; f != nil {
		r.between = nil
		f()
	}
}

func (r *interleavingRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	i, err := r.MemoryRepository.FindByEmail(ctx, email)
	r.fire()
	return i, err
}

func (r *interleavingRepo) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	i, err := r.MemoryRepository.FindByID(ctx, id)
	r.fire()
	return i, err
}

func TestPasswordChangeSurvivesConcurrentWrites(t *testing.T) {
	cases := []struct {
		name string
		run  func(ctx context.Context, svc *AuthService) error
	}{
		{"login", func(ctx context.Context, svc *AuthService) error {
			_, err := svc.Login(ctx, "race@campus.edu", "oldpass")
			return err
		}},
		{"forgot password", func(ctx context.Context, svc *AuthService) error {
			return svc.ForgotPassword(ctx, "race@campus.edu")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := &interleavingRepo{MemoryRepository: identities.NewMemoryRepository()}
			c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
			svc := NewAuthService(repo, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenIssuer("k").WithClock(c.Now), nil, nil).WithClock(c.Now)
			require.NoError(t, svc.Register(ctx, RegisterInput{Email: "race@campus.edu", Name: "R", Password: "oldpass"}))

			stored, err := repo.MemoryRepository.FindByEmail(ctx, "race@campus.edu")
			require.NoError(t, err)
			repo.between = func() {
				require.NoError(t, svc.ChangePassword(ctx, stored.ID, "oldpass", "newpass"))
			}

			require.NoError(t, tc.run(ctx, svc))

			_, err = svc.Login(ctx, "race@campus.edu", "newpass")
			assert.NoError(t, err)
			_, err = svc.Login(ctx, "race@campus.edu", "oldpass")
			assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		})
	}
}

func TestResetPassword_TokenUsableOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "once@campus.edu", "secret1", roles.Student)
	require.NoError(t, f.svc.ForgotPassword(ctx, "once@campus.edu"))
	token := f.notifier.sent[0].token

	repo := &interleavingRepo{MemoryRepository: f.repo}
	svc := NewAuthService(repo, auth.NewPasswordHasher(bcrypt.MinCost), f.tokens, nil, nil).WithClock(f.clock.Now)
	repo.between = func() {
		require.NoError(t, svc.ResetPassword(ctx, token, "first1"))
	}

	err := svc.ResetPassword(ctx, token, "second2")
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)

	_, err = svc.Login(ctx, "once@campus.edu", "first1")
	assert.NoError(t, err)
}

func TestPasswordLongerThanBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	long := strings.Repeat("x", auth.MaxPasswordBytes+1)

	err := f.svc.Register(ctx, RegisterInput{Email: "long@campus.edu", Name: "L", Password: long})
	assert.Equal(t, []string{"password"}, validationParams(t, err))
	assert.NotErrorIs(t, err, common.ErrorInternal)

	f.register(t, "long@campus.edu", strings.Repeat("x", auth.MaxPasswordBytes), roles.Student)
	res, err := f.svc.Login(ctx, "long@campus.edu", strings.Repeat("x", auth.MaxPasswordBytes))
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, res.User.ID, strings.Repeat("x", auth.MaxPasswordBytes), long)
	assert.Equal(t, []string{"newPassword"}, validationParams(t, err))

	err = f.svc.ResetPassword(ctx, "tok", long)
	assert.Equal(t, []string{"password"}, validationParams(t, err))

	// 25 characters, 75 bytes.
	err = f.svc.Register(ctx, RegisterInput{Email: "wide@campus.edu", Name: "W", Password: strings.Repeat("€", 25)})
	assert.Equal(t, []string{"password"}, validationParams(t, err))
}
