// Package app assembles the scan pipeline from configuration for the API server and the CLI.
package app

import (
	"log/slog"

	"github.com/user/backlink-reclaim/internal/adapter/browser"
	"github.com/user/backlink-reclaim/internal/adapter/dataforseo"
	"github.com/user/backlink-reclaim/internal/adapter/httpprobe"
	"github.com/user/backlink-reclaim/internal/adapter/mock"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/internal/usecase"
	"github.com/user/backlink-reclaim/pkg/config"
)

// NewBacklinkSource returns the configured provider, or nil when DataForSEO credentials are missing.
func NewBacklinkSource(cfg *config.Config) repository.BacklinkSource {
	switch cfg.BacklinkProvider {
	case config.ProviderMock:
		slog.Warn("Using mock backlink provider")
		return mock.NewBacklinkSource()
	default:
		if !cfg.HasProviderCredentials() {
			slog.Warn("DataForSEO credentials are not set; scans will fail until they are configured")
			return nil
		}
		return dataforseo.NewClient(cfg.DataForSEOBaseURL, cfg.DataForSEOLogin, cfg.DataForSEOPassword, cfg.BacklinkLimit, cfg.ProviderTimeout)
	}
}

// NewLivenessProber builds the HTTP prober and, when enabled and available, the browser tier.
// The returned func releases the browser.
func NewLivenessProber(cfg *config.Config) (*usecase.LivenessProber, func()) {
	checker := httpprobe.NewProber(cfg.ProbeTimeout, cfg.ProbeUserAgent, cfg.ProbeRatePerSecond)
	// HEAD plus GET per target, and every request of a batch may queue on the pacer.
	batchBudget := 2*cfg.ProbeTimeout + checker.PacingDelay(2*cfg.ProbeBatchSize)
	cleanup := func() {}

	var browserChecker repository.BrowserChecker
	if cfg.ProbeBrowserFallback {
		browserTimeout := 2 * cfg.ProbeTimeout
		b, err := browser.NewChecker(cfg.ProbeUserAgent, browserTimeout)
		if err != nil {
			slog.Error("Browser probe tier disabled", "error", err)
		} else {
			browserChecker = b
			batchBudget += browserTimeout
			cleanup = b.Close
			slog.Info("Browser probe tier enabled")
		}
	}

	return usecase.NewLivenessProber(checker, browserChecker, cfg.ProbeBatchSize, batchBudget), cleanup
}

// NewScanner wires the scan use case. history may be nil.
func NewScanner(cfg *config.Config, limiter repository.RateLimiter, history repository.ScanRepository) (usecase.Scanner, func()) {
	prober, cleanup := NewLivenessProber(cfg)
	scanner := usecase.NewScanUseCase(limiter, NewBacklinkSource(cfg), prober, history, usecase.ScanOptions{
		MaxChecks:           cfg.MaxChecks,
		MaxResults:          cfg.MaxResults,
		MaxTopReferrers:     cfg.MaxTopReferrers,
		SeparateUnreachable: cfg.UnreachablePolicy == config.UnreachableSeparate,
	})
	return scanner, cleanup
}
