package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/backlink-reclaim/internal/entity"
)

func edge(sourceDomain, targetURL string) entity.BacklinkEdge {
	return entity.BacklinkEdge{
		SourceDomain: sourceDomain,
		SourceURL:    "https://" + sourceDomain + "/post",
		TargetURL:    targetURL,
		SourceRank:   len(sourceDomain),
	}
}

func scenarioEdges() []entity.BacklinkEdge {
	return []entity.BacklinkEdge{
		edge("ref.org", "https://example.com/a"),
		edge("blog.net", "https://example.com/a"),
		edge("ref.org", "https://example.com/a?utm=x"),
		edge("news.io", "https://example.com/b"),
	}
}

func TestAggregate_Scenario(t *testing.T) {
	aggs := Aggregate(scenarioEdges(), DefaultMaxTopReferrers)
	require.Len(t, aggs, 2)

	assert.Equal(t, "/a", aggs[0].Key)
	assert.Equal(t, "https://example.com/a", aggs[0].URL)
	assert.Equal(t, 3, aggs[0].BacklinkCount)
	assert.Equal(t, []string{"ref.org", "blog.net"}, aggs[0].ReferringDomains)
	assert.Equal(t, []entity.Referrer{
		{Domain: "ref.org", URL: "https://ref.org/post", Rank: 7},
		{Domain: "blog.net", URL: "https://blog.net/post", Rank: 8},
	}, aggs[0].TopReferrers)

	assert.Equal(t, "/b", aggs[1].Key)
	assert.Equal(t, 1, aggs[1].BacklinkCount)
	assert.Equal(t, []string{"news.io"}, aggs[1].ReferringDomains)
}

func TestAggregate_CountsEveryEdge(t *testing.T) {
	var edges []entity.BacklinkEdge
	for i := 0; i < 57; i++ {
		edges = append(edges, edge(fmt.Sprintf("d%d.com", i%13), fmt.Sprintf("https://example.com/p%d", i%7)))
	}

	aggs := Aggregate(edges, DefaultMaxTopReferrers)
	total := 0
	for _, a := range aggs {
		total += a.BacklinkCount
		assert.LessOrEqual(t, len(a.TopReferrers), min(DefaultMaxTopReferrers, len(a.ReferringDomains)))
	}
	assert.Equal(t, len(edges), total)
}

func TestAggregate_TopReferrersCapped(t *testing.T) {
	var edges []entity.BacklinkEdge
	for i := 0; i < 25; i++ {
		edges = append(edges, edge(fmt.Sprintf("d%02d.com", i), "https://example.com/x"))
	}

	aggs := Aggregate(edges, DefaultMaxTopReferrers)
	require.Len(t, aggs, 1)
	assert.Len(t, aggs[0].ReferringDomains, 25)
	require.Len(t, aggs[0].TopReferrers, 10)
	assert.Equal(t, "d00.com", aggs[0].TopReferrers[0].Domain)
	assert.Equal(t, "d09.com", aggs[0].TopReferrers[9].Domain)
}

func TestAggregate_EdgeCases(t *testing.T) {
	edges := []entity.BacklinkEdge{
		edge("ref.org", "https://example.com"),
		edge("ref.org", "https://example.com/"),
		{SourceDomain: "", SourceURL: "", TargetURL: "https://example.com/c"},
		edge("bad.org", "http://[::1"),
	}

	aggs := Aggregate(edges, DefaultMaxTopReferrers)
	require.Len(t, aggs, 3)

	assert.Equal(t, "/", aggs[0].Key)
	assert.Equal(t, 2, aggs[0].BacklinkCount)
	assert.Len(t, aggs[0].ReferringDomains, 1)

	assert.Equal(t, "/c", aggs[1].Key)
	assert.Equal(t, 1, aggs[1].BacklinkCount)
	assert.Empty(t, aggs[1].ReferringDomains)
	assert.NotNil(t, aggs[1].TopReferrers)

	assert.Equal(t, "http://[::1", aggs[2].Key)
}

func TestAggregate_Empty(t *testing.T) {
	aggs := Aggregate(nil, DefaultMaxTopReferrers)
	assert.NotNil(t, aggs)
	assert.Empty(t, aggs)
}
