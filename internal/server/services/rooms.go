package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/rooms"
	"github.com/google/uuid"
)

const timeLayout = "15:04"

// BookingInput is the body of a booking request.
type BookingInput struct {
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	CourseName string `json:"courseName"`
	Lecturer   string `json:"lecturer"`
}

// RoomService exposes the room catalog, schedules, device controls and
// occupancy readings.
type RoomService struct {
	catalog   *rooms.Catalog
	scheduler *rooms.Scheduler
	sensors   *rooms.Sensors
	images    ImageResolver
	logger    logging.Logger
}

func NewRoomService(c *rooms.Catalog, sch *rooms.Scheduler, sens *rooms.Sensors, images ImageResolver, l logging.Logger) *RoomService {
	if images == nil {
		images = StaticImages{}
	}
	if l == nil {
		l = logging.Nop{}
	}
	return &RoomService{
		catalog:   c,
		scheduler: sch,
		sensors:   sens,
		images:    images,
		logger:    l.With("module", "room_service"),
	}
}

func (s *RoomService) List(ctx context.Context) []models.Room {
	return s.withImages(ctx, s.catalog.List())
}

func (s *RoomService) Get(ctx context.Context, id string) (models.Room, error) {
	r, err := s.catalog.Get(id)
	if err != nil {
		return models.Room{}, err
	}
	return s.withImage(ctx, r), nil
}

func (s *RoomService) Search(ctx context.Context, f models.RoomFilter) []models.Room {
	return s.withImages(ctx, s.catalog.Search(f))
}

// Schedule returns the day plan of a room. An empty date means today.
func (s *RoomService) Schedule(ctx context.Context, id, date string) (*models.RoomSchedule, error) {
	sch, err := s.scheduler.Schedule(id, date)
	if err != nil {
		if errors.Is(err, rooms.ErrInvalidDate) {
			var v common.ValidationError
			v.Add("date", date, "Date must be formatted YYYY-MM-DD")
			return nil, &v
		}
		return nil, err
	}
	sch.Room = s.withImage(ctx, sch.Room)
	return &sch, nil
}

// Book records a booking for the given room. The lecturer defaults to the
// name of the booking user. Overlapping bookings are not detected.
func (s *RoomService) Book(ctx context.Context, by models.PublicIdentity, id string, in BookingInput) (*models.Booking, error) {
	var v common.ValidationError
	if _, err := time.Parse(rooms.DateLayout, in.Date); err != nil {
		v.Add("date", in.Date, "Date must be formatted YYYY-MM-DD")
	}
	start, startErr := time.Parse(timeLayout, in.StartTime)
	if startErr != nil {
		v.Add("startTime", in.StartTime, "Start time must be formatted HH:MM")
	}
	end, endErr := time.Parse(timeLayout, in.EndTime)
	if endErr != nil {
		v.Add("endTime", in.EndTime, "End time must be formatted HH:MM")
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		v.Add("endTime", in.EndTime, "End time must be after start time")
	}
	course := strings.TrimSpace(in.CourseName)
	if course == "" {
		v.Add("courseName", in.CourseName, "Course name is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	lecturer := strings.TrimSpace(in.Lecturer)
	if lecturer == "" {
		lecturer = by.Name
	}
	b := models.Booking{
		ID:         uuid.NewString(),
		RoomID:     id,
		Date:       in.Date,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		CourseName: course,
		Lecturer:   lecturer,
		BookedBy:   by.ID,
	}
	if err := s.catalog.AddBooking(b); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "room booked", "room", id, "date", b.Date, "from", b.StartTime, "to", b.EndTime, "by", by.Email)
	return &b, nil
}

func (s *RoomService) DeviceStatus(_ context.Context, id string) (models.DeviceStatus, error) {
	return s.catalog.DeviceStatus(id)
}

// UpdateDeviceStatus switches the devices named in u and returns the full
// resulting state.
func (s *RoomService) UpdateDeviceStatus(ctx context.Context, by models.PublicIdentity, id string, u models.DeviceUpdate) (models.DeviceStatus, error) {
	if u.IsEmpty() {
		var v common.ValidationError
		v.Add("devices", "", "At least one device state is required")
		return models.DeviceStatus{}, &v
	}
	st, err := s.catalog.UpdateDeviceStatus(id, u)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	s.logger.Info(ctx, "device status updated", "room", id, "by", by.Email, "status", st)
	return st, nil
}

// Occupancy returns the number of people the room sensor currently sees.
func (s *RoomService) Occupancy(_ context.Context, id string) (int, error) {
	return s.sensors.HumanCount(id)
}

func (s *RoomService) withImages(ctx context.Context, rs []models.Room) []models.Room {
	for i := range rs {
		rs[i] = s.withImage(ctx, rs[i])
	}
	return rs
}

func (s *RoomService) withImage(ctx context.Context, r models.Room) models.Room {
	url, err := s.images.RoomImageURL(ctx, r)
	if err != nil {
		s.logger.Warn(ctx, "room image url", "room", r.ID, "error", err)
		return r
	}
	r.Image = url
	return r
}
