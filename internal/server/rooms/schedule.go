package rooms

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DateLayout is the wire format of schedule and booking dates.
const DateLayout = "2006-01-02"

const (
	firstHour     = 8
	closingHour   = 21
	occupiedAbove = 0.7
	cacheEntries  = 512
)

var lecturers = []string{"Smith", "Johnson", "Williams", "Jones", "Brown"}

var ErrInvalidDate = errors.New("invalid date")

// Rand is the randomness used for generated schedules and sensor readings.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source, which is
// safe for concurrent use.
func DefaultRand() Rand { return globalRand{} }

// Scheduler produces hourly day plans for rooms. Without a timetable
// backend the occupancy of each hour is simulated; a generated plan is
// cached per room and date so repeated reads agree until the entry expires.
// Recorded bookings are always laid over the cached plan.
type Scheduler struct {
	catalog *Catalog
	cache   *lru.LRU[string, []models.ScheduleSlot]
	rnd     Rand
	now     func() time.Time
}

func NewScheduler(c *Catalog, ttl time.Duration) *Scheduler {
	return &Scheduler{
		catalog: c,
		cache:   lru.NewLRU[string, []models.ScheduleSlot](cacheEntries, nil, ttl),
		rnd:     DefaultRand(),
		now:     time.Now,
	}
}

func (s *Scheduler) WithRand(r Rand) *Scheduler {
	s.rnd = r
	return s
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Schedule returns the plan of roomID for date (YYYY-MM-DD). An empty date
// means today. Slots start at 08:00, or at the current hour when the date is
// today, and the last one ends at 21:00.
func (s *Scheduler) Schedule(roomID, date string) (models.RoomSchedule, error) {
	room, err := s.catalog.Get(roomID)
	if err != nil {
		return models.RoomSchedule{}, err
	}

	now := s.now()
	if date == "" {
		date = now.Format(DateLayout)
	}
	day, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return models.RoomSchedule{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	key := roomID + "|" + date
	slots, ok := s.cache.Get(key)
	if !ok {
		slots = s.generate(startHour(day, now))
		s.cache.Add(key, slots)
	}

	slots = overlay(slots, s.catalog.Bookings(roomID, date))
	return models.RoomSchedule{Room: room, Date: date, Slots: slots}, nil
}

// Forget drops the cached plan of a room and date.
func (s *Scheduler) Forget(roomID, date string) {
	s.cache.Remove(roomID + "|" + date)
}

func startHour(day, now time.Time) int {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return now.Hour()
	}
	return firstHour
}

func (s *Scheduler) generate(from int) []models.ScheduleSlot {
	slots := make([]models.ScheduleSlot, 0, max(closingHour-from, 0))
	for h := from; h < closingHour; h++ {
		slot := models.ScheduleSlot{
			StartTime: fmt.Sprintf("%02d:00", h),
			EndTime:   fmt.Sprintf("%02d:00", h+1),
		}
		if s.rnd.Float64() > occupiedAbove {
			slot.IsOccupied = true
			slot.CourseName = fmt.Sprintf("Course %d", s.rnd.IntN(100))
			slot.Lecturer = "Dr. " + lecturers[s.rnd.IntN(len(lecturers))]
			slot.BookingID = uuid.NewString()
		}
		slots = append(slots, slot)
	}
	return slots
}

// overlay returns a copy of slots with every slot starting at a booking's
// start time marked as taken by that booking.
func overlay(slots []models.ScheduleSlot, bookings []models.Booking) []models.ScheduleSlot {
	out := make([]models.ScheduleSlot, len(slots))
	copy(out, slots)
	for _, b := range bookings {
		for i := range out {
			if out[i].StartTime == b.StartTime {
				out[i].IsOccupied = true
				out[i].CourseName = b.CourseName
				out[i].Lecturer = b.Lecturer
				out[i].BookingID = b.ID
			}
		}
	}
	return out
}
