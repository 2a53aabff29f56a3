package lookup

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Extractor pulls registrar and lifecycle dates out of whichever payload a
// lookup produced. It is strictly best-effort: a field that fails to parse is
// left absent, never reported as an error.
type Extractor struct {
	// now is injectable so daysUntilExpiration is deterministic in tests.
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Line-anchored field patterns for legacy WHOIS text. Registries disagree on
// field names, so each pattern carries the common variants.
var (
	registrarPattern  = regexp.MustCompile(`(?im)^[^\S\r\n]*registrar:[ \t]*(.+?)[ \t]*$`)
	expirationPattern = regexp.MustCompile(`(?im)^[^\S\r\n]*(?:registry expiry date|expiry date|expiration date|expires on):[ \t]*(.+?)[ \t]*$`)
	creationPattern   = regexp.MustCompile(`(?im)^[^\S\r\n]*(?:creation date|created on):[ \t]*(.+?)[ \t]*$`)
	updatedPattern    = regexp.MustCompile(`(?im)^[^\S\r\n]*(?:updated date|last updated):[ \t]*(.+?)[ \t]*$`)
)

var whoisDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"02/01/2006",
}

// FromRegistry extracts DomainInfo from a structured registry (RDAP) payload.
// The payload has no verified schema, so every access goes through optional
// type assertions.
func (e *Extractor) FromRegistry(payload map[string]any) *DomainInfo {
	info := &DomainInfo{}
	if payload == nil {
		return info
	}

	if entities, ok := payload["entities"].([]any); ok {
		// Prefer the entity tagged with the registrar role; fall back to the
		// first entity carrying a formatted name, since some registries omit
		// the roles array entirely.
		var fallback string
		for _, raw := range entities {
			entity, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name := vcardFullName(entity["vcardArray"])
			if name == "" {
				continue
			}
			if hasRegistrarRole(entity) {
				info.Registrar = name
				break
			}
			if fallback == "" {
				fallback = name
			}
		}
		if info.Registrar == "" {
			info.Registrar = fallback
		}
	}

	if events, ok := payload["events"].([]any); ok {
		for _, raw := range events {
			event, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			action, _ := event["eventAction"].(string)
			dateStr, _ := event["eventDate"].(string)
			t, err := time.Parse(time.RFC3339, dateStr)
			if err != nil {
				continue
			}
			switch action {
			case "expiration":
				info.ExpirationDate = &t
			case "registration":
				info.CreatedDate = &t
			case "last changed":
				info.UpdatedDate = &t
			}
		}
	}

	e.fillDaysUntilExpiration(info)
	return info
}

// FromText extracts DomainInfo from legacy WHOIS free text.
func (e *Extractor) FromText(payload any) *DomainInfo {
	text := payloadText(payload)
	info := &DomainInfo{}

	if m := registrarPattern.FindStringSubmatch(text); m != nil {
		info.Registrar = m[1]
	}
	info.ExpirationDate = firstDate(expirationPattern, text)
	info.CreatedDate = firstDate(creationPattern, text)
	info.UpdatedDate = firstDate(updatedPattern, text)

	e.fillDaysUntilExpiration(info)
	return info
}

func (e *Extractor) fillDaysUntilExpiration(info *DomainInfo) {
	if info.ExpirationDate == nil {
		return
	}
	// Whole days rounded toward negative infinity; already-expired domains
	// yield a negative count.
	days := int(math.Floor(info.ExpirationDate.Sub(e.now()).Hours() / 24))
	info.DaysUntilExpiration = &days
}

// hasRegistrarRole reports whether the entity's roles array tags it as the
// registrar.
func hasRegistrarRole(entity map[string]any) bool {
	roles, ok := entity["roles"].([]any)
	if !ok {
		return false
	}
	for _, r := range roles {
		if role, ok := r.(string); ok && role == "registrar" {
			return true
		}
	}
	return false
}

// vcardFullName walks a jCard value, ["vcard", [[prop, params, type, value], ...]],
// and returns the fn property.
func vcardFullName(vcard any) string {
	arr, ok := vcard.([]any)
	if !ok || len(arr) < 2 {
		return ""
	}
	props, ok := arr[1].([]any)
	if !ok {
		return ""
	}
	for _, raw := range props {
		prop, ok := raw.([]any)
		if !ok || len(prop) < 4 {
			continue
		}
		if name, ok := prop[0].(string); !ok || name != "fn" {
			continue
		}
		if value, ok := prop[3].(string); ok {
			return value
		}
	}
	return ""
}

func firstDate(pattern *regexp.Regexp, text string) *time.Time {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	raw := strings.TrimSpace(m[1])
	for _, format := range whoisDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	// Unparseable date strings are dropped rather than surfaced.
	return nil
}

// payloadText renders an arbitrary payload as text for pattern matching.
func payloadText(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}
