// Package mock provides a deterministic backlink source for demos and local runs without
// provider credentials.
package mock

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/pkg/utils"
)

var referrerDomains = []string{
	"forbes.com", "reddit.com", "medium.com", "linkedin.com", "quora.com",
	"techcrunch.com", "mashable.com", "huffpost.com", "businessinsider.com", "inc.com",
	"entrepreneur.com", "fastcompany.com", "wired.com", "theverge.com", "arstechnica.com",
	"zdnet.com", "cnet.com", "producthunt.com", "dev.to", "stackoverflow.com",
	"github.com", "wikipedia.org", "theguardian.com", "bbc.com", "reuters.com",
}

var targetSections = []string{"blog", "resources", "guides", "posts", "2020", "archived", "tools"}

var slugWords = []string{
	"ultimate", "complete", "guide", "tutorial", "review", "tips", "strategies",
	"growth", "marketing", "seo", "content", "email", "analytics", "startup", "automation",
}

const (
	minTargets = 8
	maxTargets = 20
)

// BacklinkSource generates the same edges for the same domain on every call.
type BacklinkSource struct{}

// NewBacklinkSource creates a new instance of BacklinkSource.
func NewBacklinkSource() *BacklinkSource {
	return &BacklinkSource{}
}

// FetchBacklinks returns generated edges pointing at pages of domain.
func (s *BacklinkSource) FetchBacklinks(ctx context.Context, domain string) (*entity.BacklinkFetch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed(domain), 0))
	targets := minTargets + rng.IntN(maxTargets-minTargets+1)

	fetch := &entity.BacklinkFetch{Edges: make([]entity.BacklinkEdge, 0, targets*2)}
	for i := 0; i < targets; i++ {
		path := fmt.Sprintf("/%s/%s", targetSections[rng.IntN(len(targetSections))], slug(rng))
		links := 1 + rng.IntN(6)
		for j := 0; j < links; j++ {
			ref := referrerDomains[rng.IntN(len(referrerDomains))]
			fetch.Edges = append(fetch.Edges, entity.BacklinkEdge{
				SourceDomain: ref,
				SourceURL:    fmt.Sprintf("https://%s/%s", ref, slug(rng)),
				TargetURL:    "https://" + domain + path,
				SourceRank:   40 + rng.IntN(56),
			})
		}
	}
	fetch.TotalCount = len(fetch.Edges) + 200 + rng.IntN(600)
	return fetch, nil
}

func seed(domain string) uint64 {
	sum, _ := hex.DecodeString(utils.HashKey(domain)[:16])
	return binary.BigEndian.Uint64(sum)
}

func slug(rng *rand.Rand) string {
	n := 2 + rng.IntN(3)
	words := make([]string, n)
	for i := range words {
		words[i] = slugWords[rng.IntN(len(slugWords))]
	}
	return strings.Join(words, "-")
}
