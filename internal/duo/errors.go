package duo

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a user or group lookup has no match.
var ErrNotFound = errors.New("not found")

// APIError is a failed Admin API call: a non-2xx status or a stat other
// than OK.
type APIError struct {
	StatusCode int
	Stat       string
	Code       int
	Message    string
	Detail     string
	Body       []byte
	Header     http.Header
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("duo api error (status %d, code %d): %s", e.StatusCode, e.Code, msg)
}
