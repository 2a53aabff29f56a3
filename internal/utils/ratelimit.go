package utils

import (
	"context"
	"time"
)

// RateLimiter is a token bucket used to space outbound protocol queries.
// WHOIS registries in particular blocklist clients that burst, so the legacy
// lookup path takes a token before every query.
type RateLimiter struct {
	rate     int
	interval time.Duration
	tokens   chan struct{}
	stop     chan struct{}
}

// NewRateLimiter creates a limiter allowing rate tokens per interval. The
// bucket starts full.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rate:     rate,
		interval: interval,
		tokens:   make(chan struct{}, rate),
		stop:     make(chan struct{}),
	}

	for i := 0; i < rate; i++ {
		rl.tokens <- struct{}{}
	}
	go rl.refill()

	return rl
}

// WaitContext blocks until a token is available or the context is done.
func (rl *RateLimiter) WaitContext(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryWait attempts to take a token without blocking.
func (rl *RateLimiter) TryWait() bool {
	select {
	case <-rl.tokens:
		return true
	default:
		return false
	}
}

// Stop terminates the refill goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) refill() {
	ticker := time.NewTicker(rl.interval / time.Duration(rl.rate))
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			select {
			case rl.tokens <- struct{}{}:
			default:
			}
		}
	}
}
