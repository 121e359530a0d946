package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/scams/internal/client/client"
	"github.com/dmitrijs2005/scams/internal/client/config"
	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/client/session"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/stretchr/testify/require"
)

var (
	jane = models.Identity{ID: "u2", Email: "jane@uni.edu", Name: "Jane Smith", Role: roles.Lecturer}
	john = models.Identity{ID: "u3", Email: "john@uni.edu", Name: "John Doe", Role: roles.Student}
	mike = models.Identity{ID: "u4", Email: "mike@uni.edu", Name: "Mike Johnson", Role: roles.Security}
)

// fakeAPI is a scripted client.Client. err, when set, is returned by every
// call; calls records the method names in order.
type fakeAPI struct {
	token string
	user  models.Identity
	err   error
	calls []string

	registered models.RegisterRequest
	booked     models.BookingRequest
	filter     models.RoomFilter
}

func (f *fakeAPI) SetToken(t string)          { f.token = t }
func (f *fakeAPI) Ping(context.Context) error { return f.err }
func (f *fakeAPI) rec(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeAPI) Register(_ context.Context, in models.RegisterRequest) (string, error) {
	f.registered = in
	return "User registered successfully", f.rec("register")
}

func (f *fakeAPI) Login(context.Context, string, string) (*models.LoginResult, error) {
	if err := f.rec("login"); err != nil {
		return nil, err
	}
	return &models.LoginResult{Token: "tok-" + f.user.ID, User: f.user}, nil
}

func (f *fakeAPI) Me(context.Context) (*models.Profile, error) {
	if err := f.rec("me"); err != nil {
		return nil, err
	}
	return &models.Profile{Identity: f.user, CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeAPI) ForgotPassword(context.Context, string) (string, error) {
	return "Password reset email sent", f.rec("forgot")
}

func (f *fakeAPI) ResetPassword(context.Context, string, string) (string, error) {
	return "Password has been reset", f.rec("reset")
}

func (f *fakeAPI) ChangePassword(context.Context, string, string) (string, error) {
	return "Password updated successfully", f.rec("change")
}

var hallA = models.Room{ID: "101", Name: "Lecture Hall A", Building: "Science Building", Floor: "1", Capacity: 120, HasProjector: true, Type: "lecture"}

func (f *fakeAPI) Dashboard(context.Context) (*models.Dashboard, error) {
	if err := f.rec("dashboard"); err != nil {
		return nil, err
	}
	return &models.Dashboard{Rooms: []models.Room{hallA}, AvailableRoomsCount: 12,
		NextClass: &models.NextClass{Course: "Course 42", Room: "Lecture Hall A", Time: "10:00"}}, nil
}

func (f *fakeAPI) Rooms(context.Context) ([]models.Room, error) {
	return []models.Room{hallA}, f.rec("rooms")
}

func (f *fakeAPI) SearchRooms(_ context.Context, fl models.RoomFilter) ([]models.Room, error) {
	f.filter = fl
	return nil, f.rec("search")
}

func (f *fakeAPI) Schedule(_ context.Context, roomID, date string) (*models.RoomSchedule, error) {
	if err := f.rec("schedule:" + roomID + ":" + date); err != nil {
		return nil, err
	}
	return &models.RoomSchedule{Room: hallA, Date: "2026-03-02", Slots: []models.ScheduleSlot{
		{StartTime: "08:00", EndTime: "09:00"},
		{StartTime: "09:00", EndTime: "10:00", IsOccupied: true, CourseName: "Course 7", Lecturer: "Dr. Smith"},
	}}, nil
}

func (f *fakeAPI) Book(_ context.Context, roomID string, in models.BookingRequest) (*models.Booking, error) {
	f.booked = in
	if err := f.rec("book:" + roomID); err != nil {
		return nil, err
	}
	return &models.Booking{ID: "b-1", RoomID: roomID, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}, nil
}

func (f *fakeAPI) Devices(_ context.Context, roomID string) (*models.DeviceStatus, error) {
	if err := f.rec("devices:" + roomID); err != nil {
		return nil, err
	}
	return &models.DeviceStatus{Lights: true, Door: true}, nil
}

func (f *fakeAPI) Occupancy(_ context.Context, roomID string) (int, error) {
	return 17, f.rec("occupancy:" + roomID)
}

var _ client.Client = (*fakeAPI)(nil)

// newTestApp builds an App on a fresh SQLite file with input as stdin.
func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "scams.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	out := &bytes.Buffer{}
	a := &App{
		config: &config.Config{RequestTimeout: time.Second},
		db:     db,
		reader: rdr(input),
		out:    out,
	}
	a.session = session.New(api, session.NewSQLiteStore(db), session.NotifierFunc(a.notify), nil)
	return a, out
}

// loggedIn returns an App already signed in as user.
func loggedIn(t *testing.T, user models.Identity, input string) (*App, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	api := &fakeAPI{user: user}
	a, out := newTestApp(t, api, input)
	require.NoError(t, a.session.Login(context.Background(), user.Email, "secret1"))
	out.Reset()
	api.calls = nil
	return a, api, out
}

// stubInputs answers text prompts from texts in order and password prompts
// from passwords in order.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(string, io.Writer) (string, error) {
		if len(passwords) == 0 {
			return "", io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return v, nil
	}
}
