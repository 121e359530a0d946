package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/scams/internal/common"
)

const maxBodyBytes = 1 << 20

type msgBody struct {
	Msg string `json:"msg"`
}

type errorsBody struct {
	Errors []common.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, msgBody{Msg: msg})
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched so field validation reports what is missing. On failure the
// response is already written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a service failure to a status code and body.
// Unexpected errors are reported as a bare "Server error" and logged unless
// the service already did.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorsBody{Errors: ve.Errors})
	case errors.Is(err, common.ErrEmailInUse),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrEmailNotFound),
		errors.Is(err, common.ErrInvalidOrExpiredToken),
		errors.Is(err, common.ErrCurrentPasswordIncorrect):
		writeMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrRoomNotFound):
		writeMsg(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		writeMsg(w, http.StatusForbidden, msgForbidden)
	default:
		// Services log the cause before returning common.ErrorInternal.
		if !errors.Is(err, common.ErrorInternal) {
			s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeMsg(w, http.StatusInternalServerError, "Server error")
	}
}
