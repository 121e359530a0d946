// Package httpapi exposes the SCAMS services as a JSON API over HTTP.
//
// Account routes live under /api/auth, room routes under /api/rooms. Every
// route except registration, login and the two password-reset steps needs a
// session token in the x-auth-token header.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/auth"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/dmitrijs2005/scams/internal/server/services"
	"github.com/gorilla/mux"
)

// SessionVerifier checks session tokens.
type SessionVerifier interface {
	VerifySession(token string) (*auth.SessionClaims, error)
}

// AuthAPI is the account service behind /api/auth.
type AuthAPI interface {
	Register(ctx context.Context, in services.RegisterInput) error
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	CurrentUser(ctx context.Context, id string) (*models.Profile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ChangePassword(ctx context.Context, id, current, next string) error
}

// RoomAPI is the room service behind /api/rooms.
type RoomAPI interface {
	List(ctx context.Context) []models.Room
	Get(ctx context.Context, id string) (models.Room, error)
	Search(ctx context.Context, f models.RoomFilter) []models.Room
	Schedule(ctx context.Context, id, date string) (*models.RoomSchedule, error)
	Book(ctx context.Context, by models.PublicIdentity, id string, in services.BookingInput) (*models.Booking, error)
	DeviceStatus(ctx context.Context, id string) (models.DeviceStatus, error)
	UpdateDeviceStatus(ctx context.Context, by models.PublicIdentity, id string, u models.DeviceUpdate) (models.DeviceStatus, error)
	Occupancy(ctx context.Context, id string) (int, error)
}

// DashboardAPI builds the landing summary.
type DashboardAPI interface {
	Get(ctx context.Context, user models.PublicIdentity) *services.Dashboard
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

var (
	bookingRoles = []roles.Role{roles.Lecturer, roles.Staff, roles.Admin}
	deviceRoles  = []roles.Role{roles.Security, roles.Admin}
)

// Server is the HTTP front of the API.
type Server struct {
	address         string
	origins         []string
	shutdownTimeout time.Duration

	tokens    SessionVerifier
	auth      AuthAPI
	rooms     RoomAPI
	dashboard DashboardAPI
	health    HealthChecker

	metrics *Metrics
	logger  logging.Logger
	handler http.Handler
}

// Options carries the listener settings of a Server.
type Options struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

func NewServer(o Options, l logging.Logger, tokens SessionVerifier, a AuthAPI, r RoomAPI, d DashboardAPI, h HealthChecker) *Server {
	if l == nil {
		l = logging.Nop{}
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		address:         o.Address,
		origins:         o.AllowedOrigins,
		shutdownTimeout: o.ShutdownTimeout,
		tokens:          tokens,
		auth:            a,
		rooms:           r,
		dashboard:       d,
		health:          h,
		metrics:         NewMetrics(),
		logger:          l.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMsg(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMsg(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.Use(s.metrics.Middleware, s.loggingMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/api/auth").Subrouter()
	a.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	a.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	a.HandleFunc("/me", s.authenticated(s.handleMe)).Methods(http.MethodGet)
	a.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	a.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)
	a.HandleFunc("/change-password", s.authenticated(s.handleChangePassword)).Methods(http.MethodPost)

	rm := r.PathPrefix("/api/rooms").Subrouter()
	rm.HandleFunc("", s.authenticated(s.handleListRooms)).Methods(http.MethodGet)
	rm.HandleFunc("/search", s.authenticated(s.handleSearchRooms)).Methods(http.MethodGet)
	rm.HandleFunc("/{id}", s.authenticated(s.handleGetRoom)).Methods(http.MethodGet)
	rm.HandleFunc("/{id}/schedule", s.authenticated(s.handleSchedule)).Methods(http.MethodGet)
	rm.HandleFunc("/{id}/bookings", s.authenticated(s.handleBook, bookingRoles...)).Methods(http.MethodPost)
	rm.HandleFunc("/{id}/devices", s.authenticated(s.handleDeviceStatus)).Methods(http.MethodGet)
	rm.HandleFunc("/{id}/devices", s.authenticated(s.handleUpdateDevices, deviceRoles...)).Methods(http.MethodPatch)
	rm.HandleFunc("/{id}/occupancy", s.authenticated(s.handleOccupancy)).Methods(http.MethodGet)

	r.HandleFunc("/api/dashboard", s.authenticated(s.handleDashboard)).Methods(http.MethodGet)

	return s.recoveryMiddleware(s.corsMiddleware(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn(r.Context(), "store unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
