package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/server/auth"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/services"
	"github.com/gorilla/mux"
)

type occupancyResponse struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	writeJSON(w, http.StatusOK, s.rooms.List(r.Context()))
}

// handleSearchRooms filters by the query parameters q, building, type and
// capacity (a minimum).
func (s *Server) handleSearchRooms(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	q := r.URL.Query()
	f := models.RoomFilter{
		Query:    q.Get("q"),
		Building: q.Get("building"),
		Type:     models.RoomType(q.Get("type")),
	}
	if c := q.Get("capacity"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			var v common.ValidationError
			v.Add("capacity", c, "Capacity must be a positive number")
			s.writeServiceError(w, r, &v)
			return
		}
		f.MinCapacity = n
	}
	writeJSON(w, http.StatusOK, s.rooms.Search(r.Context(), f))
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	room, err := s.rooms.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	sch, err := s.rooms.Schedule(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request, claims *auth.SessionClaims) {
	var req services.BookingInput
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := s.rooms.Book(r.Context(), claims.User, mux.Vars(r)["id"], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	st, err := s.rooms.DeviceStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateDevices(w http.ResponseWriter, r *http.Request, claims *auth.SessionClaims) {
	var req models.DeviceUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := s.rooms.UpdateDeviceStatus(r.Context(), claims.User, mux.Vars(r)["id"], req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request, _ *auth.SessionClaims) {
	id := mux.Vars(r)["id"]
	n, err := s.rooms.Occupancy(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occupancyResponse{RoomID: id, Count: n})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, claims *auth.SessionClaims) {
	writeJSON(w, http.StatusOK, s.dashboard.Get(r.Context(), claims.User))
}
