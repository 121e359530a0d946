package client

import (
	"context"

	"github.com/dmitrijs2005/scams/internal/client/models"
)

type Client interface {
	// SetToken sets the session token sent with protected calls. An empty
	// token sends none.
	SetToken(token string)
	Ping(ctx context.Context) error

	Register(ctx context.Context, in models.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.Profile, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, password string) (string, error)
	ChangePassword(ctx context.Context, current, next string) (string, error)

	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Rooms(ctx context.Context) ([]models.Room, error)
	SearchRooms(ctx context.Context, f models.RoomFilter) ([]models.Room, error)
	Schedule(ctx context.Context, roomID, date string) (*models.RoomSchedule, error)
	Book(ctx context.Context, roomID string, in models.BookingRequest) (*models.Booking, error)
	Devices(ctx context.Context, roomID string) (*models.DeviceStatus, error)
	Occupancy(ctx context.Context, roomID string) (int, error)
}
