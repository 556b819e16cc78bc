package models

const (
	// DefaultDraftTTL is how long an order draft survives in Redis, seconds.
	DefaultDraftTTL = 3600

	// Per-session limits for mutating form posts.
	RateLimitRequests = 30
	RateLimitWindow   = 60
)
