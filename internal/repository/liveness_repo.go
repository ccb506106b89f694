package repository

import (
	"context"

	"github.com/user/backlink-reclaim/internal/entity"
)

// LivenessChecker determines the live HTTP status of a single target URL.
// Implementations never return an error; an unreachable target reports entity.StatusUnreachable.
type LivenessChecker interface {
	Check(ctx context.Context, targetURL string) entity.ProbeResult
}

// BrowserChecker is an optional last-resort tier that loads a page in a real browser.
type BrowserChecker interface {
	Status(ctx context.Context, targetURL string) (int, error)
}
