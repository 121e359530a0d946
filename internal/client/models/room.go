package models

type Room struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Building       string `json:"building"`
	Floor          string `json:"floor"`
	Capacity       int    `json:"capacity"`
	HasProjector   bool   `json:"hasProjector"`
	HasSoundSystem bool   `json:"hasSoundSystem"`
	Type           string `json:"type"`
	Image          string `json:"image,omitempty"`
}

// RoomFilter mirrors the query parameters of /api/rooms/search. Zero values
// are left out of the request.
type RoomFilter struct {
	Query       string
	Building    string
	Type        string
	MinCapacity int
}

type DeviceStatus struct {
	Lights      bool `json:"lights"`
	Projector   bool `json:"projector"`
	SoundSystem bool `json:"soundSystem"`
	Fan         bool `json:"fan"`
	Door        bool `json:"door"`
}

type ScheduleSlot struct {
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	IsOccupied bool   `json:"isOccupied"`
	CourseName string `json:"courseName,omitempty"`
	Lecturer   string `json:"lecturer,omitempty"`
	BookingID  string `json:"bookingId,omitempty"`
}

type RoomSchedule struct {
	Room  Room           `json:"room"`
	Date  string         `json:"date"`
	Slots []ScheduleSlot `json:"slots"`
}

type BookingRequest struct {
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	CourseName string `json:"courseName"`
	Lecturer   string `json:"lecturer,omitempty"`
}

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

type NextClass struct {
	Course string `json:"course"`
	Room   string `json:"room"`
	Time   string `json:"time"`
}

type Dashboard struct {
	Rooms               []Room     `json:"rooms"`
	AvailableRoomsCount int        `json:"availableRoomsCount"`
	NextClass           *NextClass `json:"nextClass,omitempty"`
}
