package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/likexian/whois"

	"github.com/domain-agent/internal/utils"
)

// LegacyTransport issues the legacy text-protocol (WHOIS) call for a domain.
type LegacyTransport interface {
	Fetch(ctx context.Context, domain string) (string, error)
}

// WhoisClient queries port-43 WHOIS through the referral-following client in
// likexian/whois. A shared token bucket spaces queries out because WHOIS
// servers throttle aggressively even at modest volumes.
type WhoisClient struct {
	client      *whois.Client
	rateLimiter *utils.RateLimiter
}

// WhoisConfig holds WHOIS client configuration.
type WhoisConfig struct {
	Timeout time.Duration
	// RateLimit is the number of queries allowed per minute; zero disables
	// local throttling.
	RateLimit int
}

// NewWhoisClient creates a new WHOIS client.
func NewWhoisClient(cfg WhoisConfig) *WhoisClient {
	client := whois.NewClient()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	var limiter *utils.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = utils.NewRateLimiter(cfg.RateLimit, time.Minute)
	}

	return &WhoisClient{
		client:      client,
		rateLimiter: limiter,
	}
}

// Close stops the local rate limiter's refill goroutine, if one is configured.
func (c *WhoisClient) Close() {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
}

// Fetch performs the WHOIS query for a domain.
func (c *WhoisClient) Fetch(ctx context.Context, domain string) (string, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.WaitContext(ctx); err != nil {
			return "", err
		}
	}
	return c.client.Whois(domain)
}

// checkLegacy runs the legacy lookup path for a normalized domain. It is the
// last fallback, so every outcome maps to a result; it never returns an error
// to the resolver.
func (r *Resolver) checkLegacy(ctx context.Context, domain string) DomainCheckResult {
	calls := 0
	body, err := retryWithBackoff(ctx, r.retry, func() (string, error) {
		if calls++; calls > 1 {
			r.metrics.RecordRetry(string(MethodLegacy))
		}
		return r.legacy.Fetch(ctx, domain)
	})

	if err != nil {
		msg := err.Error()
		switch {
		case isRateLimitError(msg):
			return DomainCheckResult{
				Domain: domain,
				Status: StatusRateLimited,
				Method: MethodLegacy,
				Error:  msg,
			}
		case strings.TrimSpace(msg) == "":
			return DomainCheckResult{
				Domain: domain,
				Status: StatusUnknown,
				Method: MethodLegacy,
				Error:  "Empty error response",
			}
		default:
			return DomainCheckResult{
				Domain: domain,
				Status: StatusUnknown,
				Method: MethodLegacy,
				Error:  msg,
			}
		}
	}

	if strings.TrimSpace(body) == "" {
		return DomainCheckResult{
			Domain:    domain,
			Available: true,
			Status:    StatusAvailable,
			Method:    MethodLegacy,
		}
	}

	status, rule := classifyLegacyText(body, r.shortBodyThreshold)
	switch status {
	case StatusRateLimited:
		return DomainCheckResult{
			Domain: domain,
			Status: StatusRateLimited,
			Method: MethodLegacy,
			Error:  "WHOIS response contained a rate limit notice",
		}
	case StatusAvailable:
		r.log(domain).WithField("rule", rule).Debug("WHOIS classified as available")
		return DomainCheckResult{
			Domain:    domain,
			Available: true,
			Status:    StatusAvailable,
			Method:    MethodLegacy,
		}
	default:
		info := r.extractor.FromText(body)
		if info.Empty() {
			info = nil
		}
		return DomainCheckResult{
			Domain:     domain,
			Status:     StatusTaken,
			Method:     MethodLegacy,
			RawData:    body,
			DomainInfo: info,
		}
	}
}
