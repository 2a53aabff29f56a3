package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWhoisClient_Close(t *testing.T) {
	// Close must be safe both with and without a local rate limiter.
	assert.NotPanics(t, func() {
		NewWhoisClient(WhoisConfig{Timeout: time.Second}).Close()
	})
	assert.NotPanics(t, func() {
		NewWhoisClient(WhoisConfig{Timeout: time.Second, RateLimit: 60}).Close()
	})
}
