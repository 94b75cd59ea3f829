package roomdesign

import "errors"

var (
	ErrDesignNotFound    = errors.New("room design not found")
	ErrForbidden         = errors.New("not allowed to change this room design")
	ErrInvalidTransition = errors.New("room design status transition not allowed")
	ErrStatusChanged     = errors.New("room design status changed concurrently")
	ErrInvalidPrompt     = errors.New("prompt must be between 1 and 1000 characters")
)
