package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/scams/internal/client/models"
)

// fakeAPI answers the auth calls from its fields and records the token it
// was given. Room calls are not used by the session itself.
type fakeAPI struct {
	token string

	loginRes *models.LoginResult
	loginErr error
	onLogin  func()

	me    *models.Profile
	meErr error

	msgErr error
	calls  []string
}

func (f *fakeAPI) SetToken(token string)      { f.token = token }
func (f *fakeAPI) Ping(context.Context) error { return nil }
func (f *fakeAPI) record(name string)         { f.calls = append(f.calls, name) }
func (f *fakeAPI) Dashboard(context.Context) (*models.Dashboard, error) {
	return nil, errors.New("unused")
}
func (f *fakeAPI) Rooms(context.Context) ([]models.Room, error) { return nil, errors.New("unused") }
func (f *fakeAPI) SearchRooms(context.Context, models.RoomFilter) ([]models.Room, error) {
	return nil, errors.New("unused")
}
func (f *fakeAPI) Schedule(context.Context, string, string) (*models.RoomSchedule, error) {
	return nil, errors.New("unused")
}
func (f *fakeAPI) Book(context.Context, string, models.BookingRequest) (*models.Booking, error) {
	return nil, errors.New("unused")
}
func (f *fakeAPI) Devices(context.Context, string) (*models.DeviceStatus, error) {
	return nil, errors.New("unused")
}
func (f *fakeAPI) Occupancy(context.Context, string) (int, error) { return 0, errors.New("unused") }

func (f *fakeAPI) Register(context.Context, models.RegisterRequest) (string, error) {
	f.record("register")
	return "User registered successfully", f.msgErr
}

func (f *fakeAPI) Login(context.Context, string, string) (*models.LoginResult, error) {
	f.record("login")
	if f.onLogin != nil {
		f.onLogin()
	}
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) Me(context.Context) (*models.Profile, error) {
	f.record("me:" + f.token)
	return f.me, f.meErr
}

func (f *fakeAPI) ForgotPassword(context.Context, string) (string, error) {
	f.record("forgot")
	return "Password reset email sent", f.msgErr
}

func (f *fakeAPI) ResetPassword(context.Context, string, string) (string, error) {
	f.record("reset")
	return "Password has been reset", f.msgErr
}

func (f *fakeAPI) ChangePassword(context.Context, string, string) (string, error) {
	f.record("change:" + f.token)
	return "Password updated successfully", f.msgErr
}

type memStore struct {
	token    string
	identity *models.Identity
	loadErr  error
	saveErr  error
	cleared  int
}

func (m *memStore) Load(context.Context) (string, *models.Identity, error) {
	return m.token, m.identity, m.loadErr
}

func (m *memStore) Save(_ context.Context, token string, id models.Identity) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token, m.identity = token, &id
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.cleared++
	m.token, m.identity = "", nil
	return nil
}

type notes []Notification

func (n *notes) Notify(x Notification) { *n = append(*n, x) }

func (n notes) last() Notification {
	if len(n) == 0 {
		return Notification{}
	}
	return n[len(n)-1]
}

func loginAs(id models.Identity) *models.LoginResult {
	return &models.LoginResult{Token: "tok", User: id}
}

func profileOf(id models.Identity) *models.Profile {
	return &models.Profile{Identity: id}
}
