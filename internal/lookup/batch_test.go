package lookup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRegistry tracks how many lookups are in flight at once.
type countingRegistry struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
}

func (c *countingRegistry) Fetch(_ context.Context, domain string) (map[string]any, error) {
	current := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)

	c.mu.Lock()
	if current > c.maxSeen {
		c.maxSeen = current
	}
	c.mu.Unlock()

	time.Sleep(10 * time.Millisecond)
	return registryPayload(domain), nil
}

func TestCheckAll_PreservesInputOrder(t *testing.T) {
	registry := &countingRegistry{}
	resolver := newTestResolver(registry, &stubLegacy{})

	domains := make([]string, 25)
	for i := range domains {
		domains[i] = fmt.Sprintf("domain-%02d.com", i)
	}

	results := resolver.CheckAll(context.Background(), domains, 7)

	require.Len(t, results, len(domains))
	for i, result := range results {
		assert.Equal(t, domains[i], result.Domain)
		assert.Equal(t, StatusTaken, result.Status)
	}
}

func TestCheckAll_RespectsConcurrencyBound(t *testing.T) {
	for _, bound := range []int{1, 3, 10} {
		t.Run(fmt.Sprintf("bound=%d", bound), func(t *testing.T) {
			registry := &countingRegistry{}
			resolver := newTestResolver(registry, &stubLegacy{})

			domains := make([]string, 30)
			for i := range domains {
				domains[i] = fmt.Sprintf("d%d.com", i)
			}

			results := resolver.CheckAll(context.Background(), domains, bound)

			require.Len(t, results, len(domains))
			assert.LessOrEqual(t, registry.maxSeen, int32(bound),
				"no more than %d lookups may be in flight", bound)
		})
	}
}

func TestCheckAll_EmptyInput(t *testing.T) {
	resolver := newTestResolver(&countingRegistry{}, &stubLegacy{})

	results := resolver.CheckAll(context.Background(), nil, 4)
	assert.Empty(t, results)
}

func TestClampConcurrency(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"zero uses default", 0, DefaultConcurrency},
		{"negative uses default", -3, DefaultConcurrency},
		{"in range passes through", 6, 6},
		{"lower bound", 1, 1},
		{"upper bound", 10, 10},
		{"above max clamps", 50, MaxConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clampConcurrency(tt.requested))
		})
	}
}
