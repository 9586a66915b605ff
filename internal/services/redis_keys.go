package services

import "time"

const (
	// KeySessionUser holds the cached user of one browser session.
	KeySessionUser = "session:%s:user"
	KeyRateLimit   = "ratelimit:%d:%s"

	TTLRateLimitWindow = time.Minute
)
