package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/pkg/metrics"
	"github.com/user/backlink-reclaim/pkg/utils"
)

const (
	DefaultMaxChecks = 100
	DefaultBatchSize = 10
)

// ProbeStats summarizes one ProbeAll run.
type ProbeStats struct {
	Checked     int
	Skipped     int
	Fallbacks   int
	Unreachable int
}

// LivenessProber checks aggregated targets in sequential batches of concurrent probes.
type LivenessProber struct {
	checker     repository.LivenessChecker
	browser     repository.BrowserChecker
	batchSize   int
	batchBudget time.Duration
	now         func() time.Time
}

// NewLivenessProber creates a prober. batchBudget is the worst-case duration of one batch;
// a batch is not started when the caller's deadline leaves less than that. browser may be nil.
func NewLivenessProber(checker repository.LivenessChecker, browser repository.BrowserChecker, batchSize int, batchBudget time.Duration) *LivenessProber {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &LivenessProber{
		checker:     checker,
		browser:     browser,
		batchSize:   batchSize,
		batchBudget: batchBudget,
		now:         time.Now,
	}
}

// ProbeAll checks the first maxChecks aggregates and returns one result per checked target,
// in aggregate order. Started probes are not cancelled by ctx; its deadline only decides
// whether another batch may begin.
func (p *LivenessProber) ProbeAll(ctx context.Context, aggregates []entity.TargetAggregate, domain string, maxChecks int) ([]entity.ProbeResult, ProbeStats) {
	if maxChecks <= 0 {
		maxChecks = DefaultMaxChecks
	}
	targets := aggregates
	if len(targets) > maxChecks {
		targets = targets[:maxChecks]
	}

	probeCtx := context.WithoutCancel(ctx)
	deadline, hasDeadline := ctx.Deadline()
	results := make([]entity.ProbeResult, len(targets))
	var stats ProbeStats

	done := 0
	for done < len(targets) {
		if hasDeadline && deadline.Sub(p.now()) < p.batchBudget {
			stats.Skipped = len(targets) - done
			slog.Warn("Scan deadline reached, skipping remaining targets",
				"domain", domain,
				"checked", done,
				"skipped", stats.Skipped,
			)
			break
		}

		end := min(done+p.batchSize, len(targets))
		var g errgroup.Group
		for i := done; i < end; i++ {
			g.Go(func() error {
				results[i] = p.probe(probeCtx, targets[i], domain)
				return nil
			})
		}
		_ = g.Wait()
		done = end
	}

	results = results[:done]
	stats.Checked = done
	for _, r := range results {
		if r.UsedFallback {
			stats.Fallbacks++
		}
		if r.StatusCode == entity.StatusUnreachable {
			stats.Unreachable++
		}
	}
	return results, stats
}

func (p *LivenessProber) probe(ctx context.Context, agg entity.TargetAggregate, domain string) entity.ProbeResult {
	targetURL := utils.ResolveTargetURL(agg.URL, domain)
	result := p.checker.Check(ctx, targetURL)
	result.Key = agg.Key
	result.TargetURL = targetURL

	if result.StatusCode != entity.StatusUnreachable || p.browser == nil {
		return result
	}

	start := time.Now()
	status, err := p.browser.Status(ctx, targetURL)
	metrics.ProbeDuration.WithLabelValues(string(entity.ProbeMethodBrowser)).Observe(time.Since(start).Seconds())
	metrics.ProbesTotal.WithLabelValues(string(entity.ProbeMethodBrowser), metrics.ProbeResultLabel(status)).Inc()
	if err != nil {
		slog.Debug("Browser probe failed", "url", targetURL, "error", err)
		return result
	}
	result.StatusCode = status
	result.Method = entity.ProbeMethodBrowser
	result.UsedFallback = true
	return result
}
