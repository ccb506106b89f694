package usecase

import (
	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/pkg/utils"
)

// DefaultMaxTopReferrers caps the referrer sample kept per target.
const DefaultMaxTopReferrers = 10

// Aggregate groups edges by target path in first-seen order. Every edge counts toward
// BacklinkCount, including repeats from one referring domain. TopReferrers holds the first
// maxReferrers distinct referring domains, each with the edge it was first seen on.
func Aggregate(edges []entity.BacklinkEdge, maxReferrers int) []entity.TargetAggregate {
	if maxReferrers <= 0 {
		maxReferrers = DefaultMaxTopReferrers
	}

	aggregates := make([]entity.TargetAggregate, 0)
	index := make(map[string]int)
	domainSeen := make([]map[string]struct{}, 0)

	for _, edge := range edges {
		key := utils.TargetKey(edge.TargetURL)
		i, ok := index[key]
		if !ok {
			i = len(aggregates)
			index[key] = i
			aggregates = append(aggregates, entity.TargetAggregate{
				Key:              key,
				URL:              edge.TargetURL,
				ReferringDomains: []string{},
				TopReferrers:     []entity.Referrer{},
			})
			domainSeen = append(domainSeen, make(map[string]struct{}))
		}

		agg := &aggregates[i]
		agg.BacklinkCount++

		if edge.SourceDomain == "" {
			continue
		}
		if _, seen := domainSeen[i][edge.SourceDomain]; seen {
			continue
		}
		domainSeen[i][edge.SourceDomain] = struct{}{}
		agg.ReferringDomains = append(agg.ReferringDomains, edge.SourceDomain)
		if len(agg.TopReferrers) < maxReferrers {
			agg.TopReferrers = append(agg.TopReferrers, entity.Referrer{
				Domain: edge.SourceDomain,
				URL:    edge.SourceURL,
				Rank:   edge.SourceRank,
			})
		}
	}
	return aggregates
}
