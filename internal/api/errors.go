package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable marks transport-level failures: the request never got a
	// response. Callers keep their prior state and do not retry.
	ErrUnreachable = errors.New("server unreachable")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized shape of a rejected request. The server's body is
// decoded into Message/FieldErrors; Status carries the HTTP code.
type Error struct {
	Status      int          `json:"-"`
	Message     string       `json:"message"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected with status %d", e.Status)
	}
	return e.Message
}

// Unwrap maps well-known statuses onto sentinels so callers can use
// errors.Is without inspecting codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}
