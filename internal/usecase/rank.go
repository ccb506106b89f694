package usecase

import (
	"sort"

	"github.com/user/backlink-reclaim/internal/entity"
)

// DefaultMaxResults caps the number of dead pages a scan reports.
const DefaultMaxResults = 1000

// DeadStatuses are the probe statuses that mark a page dead under every policy.
var DeadStatuses = []int{404, 410}

// Ranker turns probe results into the ranked dead-page list.
type Ranker struct {
	dead       map[int]struct{}
	maxResults int
}

// NewRanker creates a Ranker reporting targets whose status is one of statuses.
func NewRanker(maxResults int, statuses ...int) *Ranker {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	dead := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		dead[s] = struct{}{}
	}
	return &Ranker{dead: dead, maxResults: maxResults}
}

// IsDead reports whether status is in the ranker's dead set.
func (r *Ranker) IsDead(status int) bool {
	_, ok := r.dead[status]
	return ok
}

// Rank joins probes to aggregates by grouping key, keeps dead targets, and orders them by
// backlink count, highest first. Ties keep probe order.
func (r *Ranker) Rank(aggregates []entity.TargetAggregate, probes []entity.ProbeResult) []entity.DeadPage {
	byKey := make(map[string]*entity.TargetAggregate, len(aggregates))
	for i := range aggregates {
		byKey[aggregates[i].Key] = &aggregates[i]
	}

	pages := make([]entity.DeadPage, 0)
	for _, probe := range probes {
		if !r.IsDead(probe.StatusCode) {
			continue
		}
		agg, ok := byKey[probe.Key]
		if !ok {
			continue
		}
		referrers := make([]entity.Referrer, len(agg.TopReferrers))
		copy(referrers, agg.TopReferrers)
		pages = append(pages, entity.DeadPage{
			Path:                 agg.Key,
			URL:                  probe.TargetURL,
			StatusCode:           probe.StatusCode,
			BacklinkCount:        agg.BacklinkCount,
			ReferringDomainCount: len(agg.ReferringDomains),
			TopReferrers:         referrers,
		})
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].BacklinkCount > pages[j].BacklinkCount
	})
	if len(pages) > r.maxResults {
		pages = pages[:r.maxResults]
	}
	return pages
}
