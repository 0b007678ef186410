package models

import (
	"errors"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternalServer    = errors.New("internal server error")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimitedError carries the human-readable retry time for a throttled
// request. It matches ErrRateLimitExceeded under errors.Is.
type RateLimitedError struct {
	RetryAt *time.Time
	Message string
}

func (e *RateLimitedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrRateLimitExceeded.Error()
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}
