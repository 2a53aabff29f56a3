package lookup

import "time"

// DomainStatus is the four-way classification produced by a completed lookup.
type DomainStatus string

const (
	StatusAvailable   DomainStatus = "available"
	StatusTaken       DomainStatus = "taken"
	StatusUnknown     DomainStatus = "unknown"
	StatusRateLimited DomainStatus = "rate_limited"
)

// Method records which lookup path produced a result.
type Method string

const (
	MethodRegistry Method = "registry"
	MethodLegacy   Method = "legacy"
)

// DomainInfo holds best-effort metadata extracted from a taken domain's record.
// Every field is optional; absence is not an error.
type DomainInfo struct {
	Registrar           string     `json:"registrar,omitempty"`
	CreatedDate         *time.Time `json:"createdDate,omitempty"`
	UpdatedDate         *time.Time `json:"updatedDate,omitempty"`
	ExpirationDate      *time.Time `json:"expirationDate,omitempty"`
	DaysUntilExpiration *int       `json:"daysUntilExpiration,omitempty"`
}

// Empty reports whether no field was extracted.
func (i *DomainInfo) Empty() bool {
	return i == nil || (i.Registrar == "" && i.CreatedDate == nil &&
		i.UpdatedDate == nil && i.ExpirationDate == nil && i.DaysUntilExpiration == nil)
}

// DomainCheckResult is the unit of output for one domain. It is constructed once
// per lookup and immutable thereafter.
type DomainCheckResult struct {
	Domain string `json:"domain"`
	// Available is redundant with Status but kept for boolean checks:
	// true iff Status == StatusAvailable.
	Available  bool         `json:"available"`
	Status     DomainStatus `json:"status"`
	Method     Method       `json:"method"`
	Error      string       `json:"error,omitempty"`
	RawData    any          `json:"rawData,omitempty"`
	DomainInfo *DomainInfo  `json:"domainInfo,omitempty"`
}
