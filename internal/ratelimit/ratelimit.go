// Package ratelimit implements the fixed-window request counter that gates
// IPFS uploads. A window opens on the first request for an identifier and
// closes windowMs later; requests straddling two windows can reach twice the
// nominal rate.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/thanghienlanh/web33/internal/validation"
)

// Limiter decides whether identifier may make another request in the current window.
type Limiter interface {
	Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) (validation.Result, error)
}

func exceeded(maxRequests int, windowLen time.Duration) validation.Result {
	return validation.Fail(fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s seconds.",
		maxRequests, formatSeconds(windowLen)))
}

func formatSeconds(windowLen time.Duration) string {
	return fmt.Sprintf("%g", windowLen.Seconds())
}
