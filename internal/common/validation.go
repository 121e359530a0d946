package common

import "strings"

// FieldError describes one failed input check. Param names the offending
// request field and Msg is the human-readable reason.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param"`
	Value string `json:"value,omitempty"`
}

// ValidationError aggregates all failed checks for a single request, in the
// order the checks ran.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Param+": "+fe.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a failed check.
func (e *ValidationError) Add(param, value, msg string) {
	e.Errors = append(e.Errors, FieldError{Msg: msg, Param: param, Value: value})
}

// Err returns e when at least one check failed, or nil otherwise, so callers
// can write `return v.Err()` at the end of a validation block.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
