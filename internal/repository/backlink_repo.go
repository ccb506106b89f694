package repository

import (
	"context"
	"errors"

	"github.com/user/backlink-reclaim/internal/entity"
)

var (
	ErrUpstreamRejected    = errors.New("backlink provider rejected the request")
	ErrUpstreamUnreachable = errors.New("backlink provider is unreachable")
	ErrBadResponse         = errors.New("backlink provider returned an unreadable response")
)

// BacklinkSource defines the contract for the external backlink index.
type BacklinkSource interface {
	// FetchBacklinks performs a single upstream call for the domain's live inbound links.
	FetchBacklinks(ctx context.Context, domain string) (*entity.BacklinkFetch, error)
}
