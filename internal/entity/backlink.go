package entity

// BacklinkEdge is one inbound link reported by the backlink provider.
type BacklinkEdge struct {
	SourceDomain string
	SourceURL    string
	TargetURL    string
	SourceRank   int
}

// BacklinkFetch is the normalized outcome of a single provider call.
type BacklinkFetch struct {
	Edges []BacklinkEdge
	// TotalCount is the provider's own count of matching links, which may exceed len(Edges).
	TotalCount int
	CostCents  int
}

// Referrer is one sampled referring domain for a target.
type Referrer struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Rank   int    `json:"rank"`
}

// TargetAggregate collects every edge converging on one target path.
type TargetAggregate struct {
	Key              string
	URL              string
	BacklinkCount    int
	ReferringDomains []string
	TopReferrers     []Referrer
}
