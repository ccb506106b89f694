package usecase

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/backlink-reclaim/internal/entity"
)

func probe(key string, status int) entity.ProbeResult {
	return entity.ProbeResult{Key: key, TargetURL: "https://example.com" + key, StatusCode: status}
}

func TestRanker_Scenario(t *testing.T) {
	aggs := Aggregate(scenarioEdges(), DefaultMaxTopReferrers)
	probes := []entity.ProbeResult{probe("/a", 404), probe("/b", 200)}

	pages := NewRanker(DefaultMaxResults, DeadStatuses...).Rank(aggs, probes)
	require.Len(t, pages, 1)
	assert.Equal(t, entity.DeadPage{
		Path:                 "/a",
		URL:                  "https://example.com/a",
		StatusCode:           404,
		BacklinkCount:        3,
		ReferringDomainCount: 2,
		TopReferrers:         aggs[0].TopReferrers,
	}, pages[0])
}

func TestRanker_SortedStableAndCapped(t *testing.T) {
	var aggs []entity.TargetAggregate
	var probes []entity.ProbeResult
	counts := []int{3, 9, 3, 1, 9, 5, 3}
	for i, c := range counts {
		key := fmt.Sprintf("/p%d", i)
		aggs = append(aggs, entity.TargetAggregate{Key: key, URL: "https://example.com" + key, BacklinkCount: c})
		status := 404
		if i == 5 {
			status = 200
		}
		probes = append(probes, probe(key, status))
	}

	pages := NewRanker(4, DeadStatuses...).Rank(aggs, probes)
	require.Len(t, pages, 4)

	var paths []string
	for i, p := range pages {
		paths = append(paths, p.Path)
		assert.Contains(t, []int{404, 410}, p.StatusCode)
		if i > 0 {
			assert.GreaterOrEqual(t, pages[i-1].BacklinkCount, p.BacklinkCount)
		}
	}
	assert.Equal(t, []string{"/p1", "/p4", "/p0", "/p2"}, paths)
}

func TestRanker_UnreachablePolicy(t *testing.T) {
	aggs := Aggregate(scenarioEdges(), DefaultMaxTopReferrers)
	probes := []entity.ProbeResult{probe("/a", 410), probe("/b", 0)}

	withZero := NewRanker(DefaultMaxResults, 404, 410, 0).Rank(aggs, probes)
	assert.Len(t, withZero, 2)

	strict := NewRanker(DefaultMaxResults, DeadStatuses...).Rank(aggs, probes)
	require.Len(t, strict, 1)
	assert.Equal(t, "/a", strict[0].Path)

	onlyZero := NewRanker(DefaultMaxResults, 0).Rank(aggs, probes)
	require.Len(t, onlyZero, 1)
	assert.Equal(t, "/b", onlyZero[0].Path)
}

func TestRanker_UnknownKeyIgnored(t *testing.T) {
	pages := NewRanker(DefaultMaxResults, DeadStatuses...).Rank(nil, []entity.ProbeResult{probe("/x", 404)})
	assert.NotNil(t, pages)
	assert.Empty(t, pages)
}

func TestAggregateAndRank_Deterministic(t *testing.T) {
	run := func() []byte {
		aggs := Aggregate(scenarioEdges(), DefaultMaxTopReferrers)
		pages := NewRanker(DefaultMaxResults, 404, 410, 0).Rank(aggs, []entity.ProbeResult{probe("/a", 404), probe("/b", 0)})
		out, err := json.Marshal(pages)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, run(), run())
}
