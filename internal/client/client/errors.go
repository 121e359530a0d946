package client

import (
	"errors"

	"github.com/dmitrijs2005/scams/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = common.ErrorUnauthorized
)

// APIError is a non-2xx answer from the server. Msg is what the server said
// and Err is the sentinel it maps to, if any.
type APIError struct {
	Status int
	Msg    string
	Err    error
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unexpected server response"
}

func (e *APIError) Unwrap() error { return e.Err }

// knownMessages maps the messages the server sends with a 400 back to the
// sentinels that produced them.
var knownMessages = map[string]error{}

func init() {
	for _, err := range []error{
		common.ErrEmailInUse,
		common.ErrInvalidCredentials,
		common.ErrEmailNotFound,
		common.ErrInvalidOrExpiredToken,
		common.ErrCurrentPasswordIncorrect,
		common.ErrUserNotFound,
		common.ErrRoomNotFound,
	} {
		knownMessages[err.Error()] = err
	}
}
