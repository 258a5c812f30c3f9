package ratelimiter

import "time"

// Limiter gates actions per source key. The returned duration is how
// long the caller should wait before retrying when denied.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
	Close()
}
