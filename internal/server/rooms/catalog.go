// Package rooms holds the campus room catalog, the mutable device state of
// each room, recorded bookings and the generated daily schedules.
package rooms

import (
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/server/models"
)

const imageQuery = "?ixlib=rb-1.2.1&auto=format&fit=crop&w=1350&q=80"

func seedRooms() []models.Room {
	return []models.Room{
		{
			ID: "101", Name: "Lecture Hall 101", Building: "Science Building", Floor: "1",
			Capacity: 120, HasProjector: true, HasSoundSystem: true, Type: models.RoomLecture,
			Image: "https://images.unsplash.com/photo-1517164850305-99a3e65bb47e" + imageQuery,
		},
		{
			ID: "102", Name: "Lecture Hall 102", Building: "Science Building", Floor: "1",
			Capacity: 80, HasProjector: true, HasSoundSystem: true, Type: models.RoomLecture,
			Image: "https://images.unsplash.com/photo-1497633762265-9d179a990aa6" + imageQuery,
		},
		{
			ID: "201", Name: "Computer Lab 201", Building: "Engineering Building", Floor: "2",
			Capacity: 40, HasProjector: true, HasSoundSystem: false, Type: models.RoomLab,
			Image: "https://images.unsplash.com/photo-1581092921461-7284a0e0adf9" + imageQuery,
		},
		{
			ID: "301", Name: "Seminar Room 301", Building: "Humanities Building", Floor: "3",
			Capacity: 30, HasProjector: true, HasSoundSystem: false, Type: models.RoomSeminar,
			Image: "https://images.unsplash.com/photo-1566125882500-87e10f726cdc" + imageQuery,
		},
		{
			ID: "401", Name: "Meeting Room 401", Building: "Administration Building", Floor: "4",
			Capacity: 15, HasProjector: false, HasSoundSystem: false, Type: models.RoomMeeting,
			Image: "https://images.unsplash.com/photo-1579208575657-c595a05383b7" + imageQuery,
		},
	}
}

func seedDevices() map[string]models.DeviceStatus {
	return map[string]models.DeviceStatus{
		"101": {Lights: true, Fan: true},
		"102": {Lights: true, Projector: true, SoundSystem: true, Fan: true, Door: true},
		"201": {},
		"301": {Lights: true, Fan: true},
		"401": {},
	}
}

// Catalog is the in-process room registry. The room list is fixed; device
// states and bookings change at runtime and are lost on restart.
type Catalog struct {
	rooms []models.Room

	mu       sync.RWMutex
	devices  map[string]models.DeviceStatus
	bookings []models.Booking
}

// NewCatalog returns a catalog seeded with the campus rooms and their
// initial device states.
func NewCatalog() *Catalog {
	return &Catalog{rooms: seedRooms(), devices: seedDevices()}
}

// List returns all rooms in catalog order.
func (c *Catalog) List() []models.Room {
	return slices.Clone(c.rooms)
}

func (c *Catalog) Get(id string) (models.Room, error) {
	for _, r := range c.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Room{}, common.ErrRoomNotFound
}

// Search returns the rooms matching every non-zero criterion of f. Query
// matches a substring of the name or the building, ignoring case; Building
// and Type must match exactly; MinCapacity is inclusive.
func (c *Catalog) Search(f models.RoomFilter) []models.Room {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Building), q) {
			continue
		}
		if f.Building != "" && r.Building != f.Building {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.MinCapacity > 0 && r.Capacity < f.MinCapacity {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (c *Catalog) DeviceStatus(roomID string) (models.DeviceStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.devices[roomID]
	if !ok {
		return models.DeviceStatus{}, common.ErrRoomNotFound
	}
	return s, nil
}

// UpdateDeviceStatus merges u into the room's current state and returns the
// result.
func (c *Catalog) UpdateDeviceStatus(roomID string, u models.DeviceUpdate) (models.DeviceStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.devices[roomID]
	if !ok {
		return models.DeviceStatus{}, common.ErrRoomNotFound
	}
	s = u.Apply(s)
	c.devices[roomID] = s
	return s, nil
}

// AddBooking records b. The room must exist.
func (c *Catalog) AddBooking(b models.Booking) error {
	if _, err := c.Get(b.RoomID); err != nil {
		return err
	}
	c.mu.Lock()
	c.bookings = append(c.bookings, b)
	c.mu.Unlock()
	return nil
}

// Bookings lists the bookings recorded for a room on a date.
func (c *Catalog) Bookings(roomID, date string) []models.Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Booking
	for _, b := range c.bookings {
		if b.RoomID == roomID && b.Date == date {
			out = append(out, b)
		}
	}
	return out
}
