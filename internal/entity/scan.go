package entity

import "time"

// ProbeMethod records which probe tier produced a status.
type ProbeMethod string

const (
	ProbeMethodHead    ProbeMethod = "head"
	ProbeMethodGet     ProbeMethod = "get"
	ProbeMethodBrowser ProbeMethod = "browser"
)

// StatusUnreachable is the status recorded when no probe tier got a response.
const StatusUnreachable = 0

// ProbeResult is the outcome of checking one target's liveness.
type ProbeResult struct {
	Key          string
	TargetURL    string
	StatusCode   int
	UsedFallback bool
	Method       ProbeMethod
}

// DeadPage is the reportable unit of a scan.
type DeadPage struct {
	Path                 string     `json:"path"`
	URL                  string     `json:"url"`
	StatusCode           int        `json:"status_code"`
	BacklinkCount        int        `json:"backlink_count"`
	ReferringDomainCount int        `json:"referring_domain_count"`
	TopReferrers         []Referrer `json:"top_referrers"`
}

// ScanDebug carries pipeline counters for troubleshooting a scan.
type ScanDebug struct {
	EdgesFetched        int   `json:"edges_fetched"`
	ProviderTotal       int   `json:"provider_total"`
	ProviderCostCents   int   `json:"provider_cost_cents"`
	TargetsFound        int   `json:"targets_found"`
	TargetsChecked      int   `json:"targets_checked"`
	TargetsSkipped      int   `json:"targets_skipped"`
	ProbeFallbacks      int   `json:"probe_fallbacks"`
	ProbesUnreachable   int   `json:"probes_unreachable"`
	DurationMS          int64 `json:"duration_ms"`
	UnreachableSeparate bool  `json:"unreachable_separate"`
}

// ScanResult mirrors the `scans` PostgreSQL table schema.
type ScanResult struct {
	ID             string
	Domain         string
	ScannedAt      time.Time
	Results        []DeadPage
	Inconclusive   []DeadPage
	TotalBacklinks int
	Debug          ScanDebug
}

// ScanRequest is one user-initiated scan. Domain is raw user input.
type ScanRequest struct {
	Domain string
	Debug  bool
}
