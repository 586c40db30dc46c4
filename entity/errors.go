package entity

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDatesUnavailable  = errors.New("dates are not available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReviewNotAllowed  = errors.New("review not allowed")
	ErrUnknownRoom       = errors.New("unknown room")
)
