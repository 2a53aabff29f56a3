package lookup

import (
	"context"
	"sync"
)

const (
	// DefaultConcurrency is the batch concurrency bound applied when the
	// caller does not supply one.
	DefaultConcurrency = 4
	// MaxConcurrency caps how many lookups a batch may run in flight.
	MaxConcurrency = 10
)

// clampConcurrency folds an arbitrary requested bound into the supported
// 1..MaxConcurrency range, defaulting when unset.
func clampConcurrency(concurrency int) int {
	switch {
	case concurrency <= 0:
		return DefaultConcurrency
	case concurrency > MaxConcurrency:
		return MaxConcurrency
	default:
		return concurrency
	}
}

// CheckAll resolves every domain in the list with at most concurrency lookups
// in flight. Results come back in input order regardless of completion order:
// each goroutine writes into its input-indexed slot. Since Check never fails,
// CheckAll never fails either; per-domain problems live inside that domain's
// result.
func (r *Resolver) CheckAll(ctx context.Context, domains []string, concurrency int) []DomainCheckResult {
	concurrency = clampConcurrency(concurrency)
	results := make([]DomainCheckResult, len(domains))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, domain := range domains {
		wg.Add(1)
		go func(i int, domain string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			r.metrics.LookupStarted()
			defer r.metrics.LookupFinished()

			results[i] = r.Check(ctx, domain)
		}(i, domain)
	}

	wg.Wait()
	return results
}
