package web

import (
	"errors"
	"fmt"
)

var (
	ErrStatus       = errors.New("unexpected status")
	ErrMissingAuth  = errors.New("missing auth token in response")
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

const maxErrorBody = 512

// Error is returned for every failed exchange with the gate. Status is zero
// when no response was received.
type Error struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	switch {
	case e.Status != 0 && body != "":
		return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Err, e.Status, body)
	case e.Status != 0:
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
