package tools

import "github.com/domain-agent/internal/lookup"

// Summary aggregates a batch of results for one tool response.
type Summary struct {
	Total       int                        `json:"total"`
	Available   int                        `json:"available"`
	Taken       int                        `json:"taken"`
	Errors      int                        `json:"errors"`
	RateLimited int                        `json:"rateLimited"`
	Unknown     int                        `json:"unknown"`
	Results     []lookup.DomainCheckResult `json:"results"`
}

// NameSummary is one name's slice of a cross-product batch.
type NameSummary struct {
	Name string `json:"name"`
	Summary
}

// NamesSummary nests per-name sub-summaries under global totals.
type NamesSummary struct {
	Total       int           `json:"total"`
	Available   int           `json:"available"`
	Taken       int           `json:"taken"`
	Errors      int           `json:"errors"`
	RateLimited int           `json:"rateLimited"`
	Unknown     int           `json:"unknown"`
	Names       []NameSummary `json:"names"`
}

func buildSummary(results []lookup.DomainCheckResult) Summary {
	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		switch r.Status {
		case lookup.StatusAvailable:
			s.Available++
		case lookup.StatusTaken:
			s.Taken++
		case lookup.StatusRateLimited:
			s.RateLimited++
		default:
			s.Unknown++
		}
		if r.Error != "" {
			s.Errors++
		}
	}
	return s
}

// filterRaw drops the rawData field unless the caller asked for it or the
// classification is suspicious enough to warrant inspection: unknown or
// rate-limited outcomes, any retrievable error, or an "available" verdict
// backed by a registry error payload other than a plain 404.
func filterRaw(result lookup.DomainCheckResult, includeRaw bool) lookup.DomainCheckResult {
	if includeRaw || result.RawData == nil {
		return result
	}
	if result.Status == lookup.StatusUnknown || result.Status == lookup.StatusRateLimited {
		return result
	}
	if result.Error != "" {
		return result
	}
	if result.Status == lookup.StatusAvailable {
		if payload, ok := result.RawData.(map[string]any); ok {
			if code, ok := payload["errorCode"].(float64); ok && int(code) != 404 {
				return result
			}
			if code, ok := payload["errorCode"].(int); ok && code != 404 {
				return result
			}
		}
	}

	result.RawData = nil
	return result
}

func filterRawAll(results []lookup.DomainCheckResult, includeRaw bool) []lookup.DomainCheckResult {
	filtered := make([]lookup.DomainCheckResult, len(results))
	for i, r := range results {
		filtered[i] = filterRaw(r, includeRaw)
	}
	return filtered
}
