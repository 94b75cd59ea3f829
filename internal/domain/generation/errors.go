package generation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingInput    = errors.New("image URL and prompt are required")
	ErrRateLimited     = errors.New("ai gateway rate limited")
	ErrPaymentRequired = errors.New("ai gateway payment required")
)

// UpstreamError is any other non-2xx answer from the gateway.
type UpstreamError struct {
	Status  int
	Body    string
	Elapsed time.Duration
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai gateway error: %d", e.Status)
}

// NoImageError means the gateway answered without an image. Details holds
// whatever text the model returned.
type NoImageError struct {
	Details string
}

func (e *NoImageError) Error() string { return "Failed to generate image" }
