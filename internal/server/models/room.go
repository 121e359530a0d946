package models

// RoomType classifies rooms for search filters.
type RoomType string

const (
	RoomLecture RoomType = "lecture"
	RoomLab     RoomType = "lab"
	RoomSeminar RoomType = "seminar"
	RoomMeeting RoomType = "meeting"
)

// Room is a bookable campus space. Floor stays a string because buildings
// label floors freely ("G", "1", "M2").
type Room struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Building       string   `json:"building"`
	Floor          string   `json:"floor"`
	Capacity       int      `json:"capacity"`
	HasProjector   bool     `json:"hasProjector"`
	HasSoundSystem bool     `json:"hasSoundSystem"`
	Type           RoomType `json:"type"`
	Image          string   `json:"image,omitempty"`
}

// DeviceStatus is the on/off (or open/closed for Door) state of the
// controllable devices in a room.
type DeviceStatus struct {
	Lights      bool `json:"lights"`
	Projector   bool `json:"projector"`
	SoundSystem bool `json:"soundSystem"`
	Fan         bool `json:"fan"`
	Door        bool `json:"door"`
}

// DeviceUpdate is a partial DeviceStatus. Nil fields are left unchanged.
type DeviceUpdate struct {
	Lights      *bool `json:"lights,omitempty"`
	Projector   *bool `json:"projector,omitempty"`
	SoundSystem *bool `json:"soundSystem,omitempty"`
	Fan         *bool `json:"fan,omitempty"`
	Door        *bool `json:"door,omitempty"`
}

// Apply returns s with every non-nil field of u copied over.
func (u DeviceUpdate) Apply(s DeviceStatus) DeviceStatus {
	if u.Lights != nil {
		s.Lights = *u.Lights
	}
	if u.Projector != nil {
		s.Projector = *u.Projector
	}
	if u.SoundSystem != nil {
		s.SoundSystem = *u.SoundSystem
	}
	if u.Fan != nil {
		s.Fan = *u.Fan
	}
	if u.Door != nil {
		s.Door = *u.Door
	}
	return s
}

// IsEmpty reports whether the update carries no field at all.
func (u DeviceUpdate) IsEmpty() bool {
	return u.Lights == nil && u.Projector == nil && u.SoundSystem == nil && u.Fan == nil && u.Door == nil
}

// ScheduleSlot is one hour of a room's day.
type ScheduleSlot struct {
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	IsOccupied bool   `json:"isOccupied"`
	CourseName string `json:"courseName,omitempty"`
	Lecturer   string `json:"lecturer,omitempty"`
	BookingID  string `json:"bookingId,omitempty"`
}

// RoomSchedule is the day plan of a room. Date is formatted YYYY-MM-DD.
type RoomSchedule struct {
	Room  Room           `json:"room"`
	Date  string         `json:"date"`
	Slots []ScheduleSlot `json:"slots"`
}

// Booking records a reservation request. Nothing checks it against other
// bookings.
type Booking struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	CourseName string `json:"courseName"`
	Lecturer   string `json:"lecturer"`
	BookedBy   string `json:"bookedBy"`
}

// RoomFilter narrows a room search. Zero values disable a criterion.
type RoomFilter struct {
	Query       string
	Building    string
	Type        RoomType
	MinCapacity int
}
