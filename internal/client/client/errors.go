package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is an application error reported by the server, either as a
// non-2xx {code, text} body or as a 2xx body carrying an "error" field.
type APIError struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Text)
}
