package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RegistryTransport issues the structured-protocol (RDAP) call for a domain.
// A nil payload with a nil error means the server answered with no record.
type RegistryTransport interface {
	Fetch(ctx context.Context, domain string) (map[string]any, error)
}

// RDAPClient queries an RDAP aggregation endpoint over HTTPS.
type RDAPClient struct {
	httpClient *resty.Client
	baseURL    string
}

// RDAPConfig holds RDAP client configuration.
type RDAPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewRDAPClient creates a new RDAP client.
func NewRDAPClient(cfg RDAPConfig) *RDAPClient {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeaders(map[string]string{
		"Accept":     "application/rdap+json, application/json",
		"User-Agent": "domain-agent/1.0",
	})

	return &RDAPClient{
		httpClient: client,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// Fetch performs the RDAP query. Non-2xx responses that carry a JSON body are
// returned as payloads so the classifier can read their errorCode; responses
// without a usable body become errors. 429 always becomes an error so the
// retrier sees the throttling signal.
func (c *RDAPClient) Fetch(ctx context.Context, domain string) (map[string]any, error) {
	url := fmt.Sprintf("%s/domain/%s", c.baseURL, domain)

	resp, err := c.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("RDAP request failed: %w", err)
	}

	var payload map[string]any
	if body := bytes.TrimSpace(resp.Body()); len(body) > 0 {
		if jsonErr := json.Unmarshal(body, &payload); jsonErr != nil {
			payload = nil
		}
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("RDAP request failed: 429 Too Many Requests")
	}
	if resp.IsSuccess() || payload != nil {
		return payload, nil
	}
	return nil, fmt.Errorf("RDAP request failed: %d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
}

// checkRegistry runs the registry lookup path for a normalized domain. The
// returned error is non-nil only for failures the path cannot classify itself;
// the caller falls back to the legacy path in that case.
func (r *Resolver) checkRegistry(ctx context.Context, domain string) (DomainCheckResult, error) {
	calls := 0
	payload, err := retryWithBackoff(ctx, r.retry, func() (map[string]any, error) {
		if calls++; calls > 1 {
			r.metrics.RecordRetry(string(MethodRegistry))
		}
		return r.registry.Fetch(ctx, domain)
	})

	if err != nil {
		msg := err.Error()
		if isRateLimitError(msg) {
			return DomainCheckResult{
				Domain: domain,
				Status: StatusRateLimited,
				Method: MethodRegistry,
				Error:  msg,
			}, nil
		}
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "404") || strings.Contains(lower, "not found") {
			return DomainCheckResult{
				Domain:    domain,
				Available: true,
				Status:    StatusAvailable,
				Method:    MethodRegistry,
			}, nil
		}
		return DomainCheckResult{}, err
	}

	if len(payload) == 0 {
		return DomainCheckResult{
			Domain:    domain,
			Available: true,
			Status:    StatusAvailable,
			Method:    MethodRegistry,
		}, nil
	}

	errorCode, hasErrorCode := payloadErrorCode(payload)
	title, _ := payload["title"].(string)
	lowerTitle := strings.ToLower(title)

	switch {
	case errorCode == 404,
		strings.Contains(lowerTitle, "object not found"),
		strings.Contains(lowerTitle, "not found"):
		// Kept for diagnostics: the caller may want to inspect the 404 record.
		return DomainCheckResult{
			Domain:    domain,
			Available: true,
			Status:    StatusAvailable,
			Method:    MethodRegistry,
			RawData:   payload,
		}, nil

	case hasErrorCode && errorCode >= 400 && errorCode < 500:
		// Client-error range means "no such record" for RDAP servers.
		return DomainCheckResult{
			Domain:    domain,
			Available: true,
			Status:    StatusAvailable,
			Method:    MethodRegistry,
			RawData:   payload,
		}, nil

	case hasErrorCode && errorCode >= 500:
		errMsg := title
		if errMsg == "" {
			errMsg = fmt.Sprintf("RDAP server error %d", errorCode)
		}
		return DomainCheckResult{
			Domain:  domain,
			Status:  StatusUnknown,
			Method:  MethodRegistry,
			Error:   errMsg,
			RawData: payload,
		}, nil
	}

	info := r.extractor.FromRegistry(payload)
	if info.Empty() {
		// A record with nothing extractable omits the field instead of
		// serializing an empty object.
		info = nil
	}
	return DomainCheckResult{
		Domain:     domain,
		Status:     StatusTaken,
		Method:     MethodRegistry,
		RawData:    payload,
		DomainInfo: info,
	}, nil
}

func payloadErrorCode(payload map[string]any) (int, bool) {
	switch v := payload["errorCode"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
