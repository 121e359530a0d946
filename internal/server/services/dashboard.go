package services

import (
	"context"

	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/rooms"
)

const dashboardRooms = 3

// NextClass is the upcoming lecture shown to students.
type NextClass struct {
	Course string `json:"course"`
	Room   string `json:"room"`
	Time   string `json:"time"`
}

// Dashboard is the landing summary for a signed-in user.
type Dashboard struct {
	Rooms               []models.Room `json:"rooms"`
	AvailableRoomsCount int           `json:"availableRoomsCount"`
	NextClass           *NextClass    `json:"nextClass,omitempty"`
}

// DashboardService assembles dashboards. Until a timetable backend exists
// the available room count and the next class are placeholders.
type DashboardService struct {
	rooms *RoomService
	rnd   rooms.Rand
}

func NewDashboardService(rs *RoomService, r rooms.Rand) *DashboardService {
	if r == nil {
		r = rooms.DefaultRand()
	}
	return &DashboardService{rooms: rs, rnd: r}
}

func (s *DashboardService) Get(ctx context.Context, user models.PublicIdentity) *Dashboard {
	all := s.rooms.List(ctx)
	d := &Dashboard{
		Rooms:               all[:min(dashboardRooms, len(all))],
		AvailableRoomsCount: s.rnd.IntN(15) + 5,
	}
	if user.Role == roles.Student {
		d.NextClass = &NextClass{
			Course: "Introduction to Smart Campus Technologies",
			Room:   "Science Building - Room 101",
			Time:   "10:00 - 11:30",
		}
	}
	return d
}
