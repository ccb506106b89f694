package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/pkg/metrics"
	"github.com/user/backlink-reclaim/pkg/utils"
)

var (
	ErrInvalidDomain         = errors.New("a valid domain is required")
	ErrRateLimited           = errors.New("this domain was already scanned today")
	ErrProviderNotConfigured = errors.New("backlink provider credentials are not configured")
)

// ScanOptions holds the policy caps of a scan.
type ScanOptions struct {
	MaxChecks       int
	MaxResults      int
	MaxTopReferrers int
	// SeparateUnreachable reports status 0 targets as inconclusive instead of dead.
	SeparateUnreachable bool
}

// Scanner defines the interface for running a dead-page scan.
type Scanner interface {
	Scan(ctx context.Context, req entity.ScanRequest) (*entity.ScanResult, error)
}

type scanUseCase struct {
	limiter      repository.RateLimiter
	source       repository.BacklinkSource
	prober       *LivenessProber
	history      repository.ScanRepository
	ranker       *Ranker
	inconclusive *Ranker
	opts         ScanOptions
	now          func() time.Time
}

// NewScanUseCase creates a new instance of the scan use case. A nil source means the provider
// is not configured; a nil history disables persistence.
func NewScanUseCase(
	limiter repository.RateLimiter,
	source repository.BacklinkSource,
	prober *LivenessProber,
	history repository.ScanRepository,
	opts ScanOptions,
) Scanner {
	uc := &scanUseCase{
		limiter: limiter,
		source:  source,
		prober:  prober,
		history: history,
		opts:    opts,
		now:     time.Now,
	}
	if opts.SeparateUnreachable {
		uc.ranker = NewRanker(opts.MaxResults, DeadStatuses...)
		uc.inconclusive = NewRanker(opts.MaxResults, entity.StatusUnreachable)
	} else {
		uc.ranker = NewRanker(opts.MaxResults, append(slices.Clone(DeadStatuses), entity.StatusUnreachable)...)
	}
	return uc
}

// Scan runs the whole pipeline for one domain: rate limit, fetch, aggregate, probe, rank.
func (uc *scanUseCase) Scan(ctx context.Context, req entity.ScanRequest) (*entity.ScanResult, error) {
	start := uc.now()

	domain, err := utils.NormalizeDomain(req.Domain)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}
	if uc.source == nil {
		metrics.ScansTotal.WithLabelValues("internal_error").Inc()
		return nil, ErrProviderNotConfigured
	}

	allowed, err := uc.limiter.CheckAndMark(ctx, domain, start)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("internal_error").Inc()
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		metrics.ScansTotal.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, domain)
	}

	slog.Info("Starting scan", "domain", domain)

	fetch, err := uc.source.FetchBacklinks(ctx, domain)
	if err != nil {
		// A failed fetch does not use up the day's scan.
		if relErr := uc.limiter.Release(context.WithoutCancel(ctx), domain, start); relErr != nil {
			slog.Error("Failed to release rate limit", "domain", domain, "error", relErr)
		}
		metrics.ScansTotal.WithLabelValues("upstream_error").Inc()
		slog.Error("Failed to fetch backlinks", "domain", domain, "error", err)
		return nil, fmt.Errorf("failed to fetch backlinks for %s: %w", domain, err)
	}

	aggregates := Aggregate(fetch.Edges, uc.opts.MaxTopReferrers)
	probes, stats := uc.prober.ProbeAll(ctx, aggregates, domain, uc.opts.MaxChecks)

	result := &entity.ScanResult{
		ID:             uuid.NewString(),
		Domain:         domain,
		ScannedAt:      start.UTC(),
		Results:        uc.ranker.Rank(aggregates, probes),
		TotalBacklinks: len(fetch.Edges),
		Debug: entity.ScanDebug{
			EdgesFetched:        len(fetch.Edges),
			ProviderTotal:       fetch.TotalCount,
			ProviderCostCents:   fetch.CostCents,
			TargetsFound:        len(aggregates),
			TargetsChecked:      stats.Checked,
			TargetsSkipped:      stats.Skipped,
			ProbeFallbacks:      stats.Fallbacks,
			ProbesUnreachable:   stats.Unreachable,
			UnreachableSeparate: uc.opts.SeparateUnreachable,
		},
	}
	if uc.inconclusive != nil {
		result.Inconclusive = uc.inconclusive.Rank(aggregates, probes)
	}
	result.Debug.DurationMS = uc.now().Sub(start).Milliseconds()

	metrics.ScansTotal.WithLabelValues("success").Inc()
	slog.Info("Scan completed",
		"domain", domain,
		"scan_id", result.ID,
		"dead_pages", len(result.Results),
		"targets_checked", stats.Checked,
		"targets_skipped", stats.Skipped,
		"duration_ms", result.Debug.DurationMS,
	)

	uc.save(ctx, result)
	return result, nil
}

func (uc *scanUseCase) save(ctx context.Context, result *entity.ScanResult) {
	if uc.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.history.Save(ctx, result); err != nil {
		slog.Error("Failed to save scan", "domain", result.Domain, "scan_id", result.ID, "error", err)
	}
}
