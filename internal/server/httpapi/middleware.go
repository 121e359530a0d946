package httpapi

import (
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/auth"
)

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
	msgForbidden    = "Access denied"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error(r.Context(), "panic", "error", rec, "stack", string(debug.Stack()))
				writeMsg(w, http.StatusInternalServerError, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware answers preflight requests and sets the CORS headers for
// allowed origins. Requests from other origins pass through without them.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowHeaders := strings.Join([]string{"Content-Type", common.AccessTokenHeaderName}, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(s.origins, origin) || slices.Contains(s.origins, "*")) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", "3600")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// protectedHandler receives the verified session of the caller.
type protectedHandler func(w http.ResponseWriter, r *http.Request, claims *auth.SessionClaims)

// authenticated requires a valid session token in the x-auth-token header
// and, when allowed is non-empty, a role from that list.
func (s *Server) authenticated(h protectedHandler, allowed ...roles.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			writeMsg(w, http.StatusUnauthorized, msgNoToken)
			return
		}
		claims, err := s.tokens.VerifySession(token)
		if err != nil {
			writeMsg(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		if len(allowed) > 0 && !roles.In(claims.User.Role, allowed...) {
			writeMsg(w, http.StatusForbidden, msgForbidden)
			return
		}
		h(w, r, claims)
	}
}
