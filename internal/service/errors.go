package service

import (
	"errors"
	"fmt"
)

var (
	ErrChallengeNotFound = errors.New("sssg challenge script not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrSearchFailed      = errors.New("all workers exited without a solution")
)

// ExtractionError reports a challenge call that was found but carried a
// parameter the solver cannot use.
type ExtractionError struct {
	Param string
	Value string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("challenge parameter %s=%q: %v", e.Param, e.Value, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
