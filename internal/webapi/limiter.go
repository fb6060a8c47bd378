package webapi

import (
	"golang.org/x/time/rate"
)

const defaultRateBurst = 5

// newRateLimiter throttles every request a Client sends; a Client only ever
// talks to its own base URL so one bucket covers it
func newRateLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = defaultRateBurst
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
