package lookup

import "strings"

// Phrases that mark a legacy WHOIS body as describing an unregistered domain.
// Matched as case-insensitive substrings against the full response.
var availabilityPhrases = []string{
	"no match",
	"not found",
	"no data found",
	"status: available",
	"domain not found",
	"no entries found",
	"domain status: available",
	"not registered",
	"is available",
	"object does not exist",
	"domain name not known",
	"no such domain",
	"domain is not registered",
}

// classifyRule is one ordered step of the legacy free-text classifier. Rules
// are evaluated in table order and the first match wins, which keeps the
// precedence between the heuristics auditable.
type classifyRule struct {
	name   string
	match  func(lower, trimmed string, shortBodyThreshold int) bool
	status DomainStatus
}

var legacyRules = []classifyRule{
	{
		// Some servers embed throttling notices in an otherwise normal body.
		name: "rate limit notice",
		match: func(lower, _ string, _ int) bool {
			return isRateLimitError(lower)
		},
		status: StatusRateLimited,
	},
	{
		name: "availability phrase",
		match: func(lower, _ string, _ int) bool {
			for _, phrase := range availabilityPhrases {
				if strings.Contains(lower, phrase) {
					return true
				}
			}
			return false
		},
		status: StatusAvailable,
	},
	{
		name: "domain-not-found prefix",
		match: func(_, trimmed string, _ int) bool {
			return strings.HasPrefix(strings.ToLower(trimmed), "domain not found")
		},
		status: StatusAvailable,
	},
	{
		// Terse registry templates answer "no such domain" in a few bare
		// lines with no registrar block. Can misclassify equally terse taken
		// records; kept for parity with observed server behavior.
		name: "short body without registrar",
		match: func(lower, trimmed string, shortBodyThreshold int) bool {
			return len(trimmed) < shortBodyThreshold && !strings.Contains(lower, "registrar")
		},
		status: StatusAvailable,
	},
}

// classifyLegacyText runs the ordered rule table over a legacy response body.
// The fallthrough classification is taken: a body that asserts nothing about
// availability is presumed to be a registration record.
func classifyLegacyText(body string, shortBodyThreshold int) (DomainStatus, string) {
	lower := strings.ToLower(body)
	trimmed := strings.TrimSpace(body)
	for _, rule := range legacyRules {
		if rule.match(lower, trimmed, shortBodyThreshold) {
			return rule.status, rule.name
		}
	}
	return StatusTaken, "registration record"
}
