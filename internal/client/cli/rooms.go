package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/scams/internal/client/client"
	"github.com/dmitrijs2005/scams/internal/client/guard"
	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/client/navigation"
)

// gate runs the route guard for path and then checks that the user's role
// may open it. It prints why when the answer is no.
func (a *App) gate(path string) bool {
	snap := a.session.Snapshot()

	d := guard.Evaluate(snap, path)
	switch d.Kind {
	case guard.Loading:
		a.println("Loading session, try again in a moment")
		return false
	case guard.Redirect:
		a.println(fmt.Sprintf("Please log in to open %s (use 'login')", d.From))
		return false
	}

	if l, ok := navigation.Lookup(path); ok && !l.Allows(snap.Identity.Role) {
		a.println(fmt.Sprintf("Access denied: %s is not available to %s", l.Title, snap.Identity.Role))
		return false
	}
	return true
}

func (a *App) Dashboard(ctx context.Context) error {
	if !a.gate("/dashboard") {
		return nil
	}
	var d *models.Dashboard
	err := a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		d, err = api.Dashboard(ctx)
		return err
	})
	if err != nil {
		return a.report(err)
	}

	a.printHeader()
	a.println(fmt.Sprintf("Available rooms: %d", d.AvailableRoomsCount))
	if d.NextClass != nil {
		a.println(fmt.Sprintf("Next class: %s in %s at %s", d.NextClass.Course, d.NextClass.Room, d.NextClass.Time))
	}
	a.printRooms(d.Rooms)
	return nil
}

func (a *App) Rooms(ctx context.Context) error {
	if !a.gate("/room-finder") {
		return nil
	}
	var rs []models.Room
	err := a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		rs, err = api.Rooms(ctx)
		return err
	})
	if err != nil {
		return a.report(err)
	}
	a.printRooms(rs)
	return nil
}

// Find searches rooms. Words after the command form the query; building,
// type and minimum capacity are prompted for and may be left empty.
func (a *App) Find(ctx context.Context, args []string) error {
	if !a.gate("/room-finder") {
		return nil
	}
	v, err := a.prompts("Building (empty for any)", "Type lecture/lab/seminar/meeting (empty for any)", "Minimum capacity (empty for any)")
	if err != nil {
		return err
	}

	f := models.RoomFilter{Query: strings.Join(args, " "), Building: v[0], Type: v[1]}
	if v[2] != "" {
		n, err := strconv.Atoi(v[2])
		if err != nil || n < 0 {
			a.println("Capacity must be a positive number")
			return nil
		}
		f.MinCapacity = n
	}

	var rs []models.Room
	err = a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		rs, err = api.SearchRooms(ctx, f)
		return err
	})
	if err != nil {
		return a.report(err)
	}
	a.printRooms(rs)
	return nil
}

// Schedule prints the hourly slots of a room: schedule <roomId> [YYYY-MM-DD].
func (a *App) Schedule(ctx context.Context, args []string) error {
	if !a.gate("/schedule") {
		return nil
	}
	if len(args) == 0 {
		a.println("Usage: schedule <roomId> [YYYY-MM-DD]")
		return nil
	}
	date := ""
	if len(args) > 1 {
		date = args[1]
	}

	var s *models.RoomSchedule
	err := a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		s, err = api.Schedule(ctx, args[0], date)
		return err
	})
	if err != nil {
		return a.report(err)
	}

	a.println(fmt.Sprintf("%s (%s), %s", s.Room.Name, s.Room.Building, s.Date))
	for _, slot := range s.Slots {
		if !slot.IsOccupied {
			a.println(fmt.Sprintf("  %s-%s  free", slot.StartTime, slot.EndTime))
			continue
		}
		a.println(fmt.Sprintf("  %s-%s  %s, %s", slot.StartTime, slot.EndTime, slot.CourseName, slot.Lecturer))
	}
	return nil
}

// Book reserves a slot: book <roomId>, then date, times and course are
// prompted for.
func (a *App) Book(ctx context.Context, args []string) error {
	if !a.gate("/booking") {
		return nil
	}
	if len(args) == 0 {
		a.println("Usage: book <roomId>")
		return nil
	}
	v, err := a.prompts("Date (YYYY-MM-DD)", "Start time (HH:MM)", "End time (HH:MM)", "Course name")
	if err != nil {
		return err
	}
	in := models.BookingRequest{Date: v[0], StartTime: v[1], EndTime: v[2], CourseName: v[3]}

	var b *models.Booking
	err = a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		b, err = api.Book(ctx, args[0], in)
		return err
	})
	if err != nil {
		return a.report(err)
	}
	a.println(fmt.Sprintf("Booked room %s on %s %s-%s (booking %s)", b.RoomID, b.Date, b.StartTime, b.EndTime, b.ID))
	return nil
}

// Devices shows device status and the sensor head count of a room.
func (a *App) Devices(ctx context.Context, args []string) error {
	if !a.gate("/security") {
		return nil
	}
	if len(args) == 0 {
		a.println("Usage: devices <roomId>")
		return nil
	}

	var st *models.DeviceStatus
	var count int
	err := a.session.Do(ctx, func(ctx context.Context, api client.Client) error {
		var err error
		if st, err = api.Devices(ctx, args[0]); err != nil {
			return err
		}
		count, err = api.Occupancy(ctx, args[0])
		return err
	})
	if err != nil {
		return a.report(err)
	}

	a.println(fmt.Sprintf("Room %s: %d people", args[0], count))
	a.println(fmt.Sprintf("  lights %s, projector %s, sound %s, fan %s, door %s",
		onOff(st.Lights), onOff(st.Projector), onOff(st.SoundSystem), onOff(st.Fan), openClosed(st.Door)))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func openClosed(b bool) string {
	if b {
		return "open"
	}
	return "closed"
}

func (a *App) printRooms(rs []models.Room) {
	if len(rs) == 0 {
		a.println("No rooms found")
		return
	}
	for _, r := range rs {
		extras := make([]string, 0, 2)
		if r.HasProjector {
			extras = append(extras, "projector")
		}
		if r.HasSoundSystem {
			extras = append(extras, "sound")
		}
		a.println(fmt.Sprintf("  %-4s %-20s %-22s floor %-2s %3d seats  %-8s %s",
			r.ID, r.Name, r.Building, r.Floor, r.Capacity, r.Type, strings.Join(extras, ",")))
	}
}
