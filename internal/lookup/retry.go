package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig tunes the exponential backoff applied to rate-limited calls.
// Values are injected rather than read from package constants so tests can use
// deterministic timing.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryConfig matches the upstream throttling behavior of public RDAP
// and WHOIS servers: three attempts, 1s initial delay, doubling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

var rateLimitIndicators = []string{
	"rate limit",
	"rate-limit",
	"ratelimit",
	"too many requests",
	"quota exceeded",
}

// isRateLimitError reports whether a failure or response body looks like an
// upstream throttling notice. Matching is a case-insensitive substring check;
// neither protocol exposes a structured throttling signal.
func isRateLimitError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// retryWithBackoff invokes op, retrying only when the failure is
// rate-limit-shaped and attempts remain. Any other failure, or exhaustion of
// attempts, propagates immediately. The delay before attempt i (0-based) is
// InitialDelay * Multiplier^i; the wait suspends only the calling goroutine.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRateLimitError(err.Error()) || attempt == attempts-1 {
			return zero, err
		}

		delay := backoffDelay(cfg, attempt)
		logrus.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Debug("rate limited, backing off before retry")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Multiplier
	}
	return time.Duration(delay)
}
