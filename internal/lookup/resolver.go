package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domain-agent/internal/metrics"
)

// DefaultShortBodyThreshold is the body length under which a WHOIS response
// with no registrar block is treated as a terse "not found" template.
const DefaultShortBodyThreshold = 100

// Resolver answers "is this domain registered?" for one domain at a time,
// trying the structured registry protocol first and falling back to legacy
// WHOIS. Check never returns an error; every failure mode is folded into the
// result's status.
type Resolver struct {
	registry           RegistryTransport
	legacy             LegacyTransport
	extractor          *Extractor
	retry              RetryConfig
	shortBodyThreshold int
	metrics            *metrics.Metrics
}

// ResolverConfig wires the two transports and tuning knobs into a Resolver.
type ResolverConfig struct {
	Registry           RegistryTransport
	Legacy             LegacyTransport
	Retry              RetryConfig
	ShortBodyThreshold int
	Metrics            *metrics.Metrics
}

// NewResolver creates a new resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	threshold := cfg.ShortBodyThreshold
	if threshold <= 0 {
		threshold = DefaultShortBodyThreshold
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	return &Resolver{
		registry:           cfg.Registry,
		legacy:             cfg.Legacy,
		extractor:          NewExtractor(),
		retry:              retry,
		shortBodyThreshold: threshold,
		metrics:            cfg.Metrics,
	}
}

// Check resolves the registration status of one domain. Input is normalized
// (lowercased, trimmed) before lookup. The returned result always has exactly
// one of the four statuses and Available is true iff the status is available.
func (r *Resolver) Check(ctx context.Context, domain string) DomainCheckResult {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	start := time.Now()

	result := r.check(ctx, normalized)

	r.metrics.RecordLookup(string(result.Status), string(result.Method), time.Since(start))
	r.log(normalized).WithFields(logrus.Fields{
		"status":   result.Status,
		"method":   result.Method,
		"duration": time.Since(start).String(),
	}).Debug("domain check completed")

	return result
}

func (r *Resolver) check(ctx context.Context, domain string) DomainCheckResult {
	if result, err := r.checkRegistry(ctx, domain); err == nil {
		return result
	} else {
		r.log(domain).WithError(err).Debug("registry lookup failed, falling back to WHOIS")
	}

	if result, ok := r.guardedLegacy(ctx, domain); ok {
		return result
	}

	// Both paths failed in a way neither could absorb. Degrade to a terminal
	// unknown result rather than surfacing a failure to the batch.
	return DomainCheckResult{
		Domain: domain,
		Status: StatusUnknown,
		Method: MethodLegacy,
		Error:  "Both registry and legacy checks failed",
	}
}

// guardedLegacy shields the resolver from a panicking legacy path. The legacy
// classifier absorbs its own failures by contract, so ok is false only for
// genuinely unexpected internal faults.
func (r *Resolver) guardedLegacy(ctx context.Context, domain string) (result DomainCheckResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log(domain).Error(fmt.Sprintf("legacy lookup panicked: %v", rec))
			ok = false
		}
	}()
	return r.checkLegacy(ctx, domain), true
}

func (r *Resolver) log(domain string) *logrus.Entry {
	return logrus.WithField("domain", domain)
}
