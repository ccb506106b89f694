// Package httpprobe checks target liveness with plain HTTP requests.
package httpprobe

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/pkg/metrics"
)

const maxRedirects = 5

// Prober implements repository.LivenessChecker. It tries HEAD first and falls back to GET
// when HEAD fails outright or the server says it does not support HEAD.
type Prober struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewProber creates a prober with a per-request timeout. ratePerSecond > 0 paces outbound
// requests across all goroutines sharing the prober, with a burst of max(1, int(ratePerSecond)).
func NewProber(timeout time.Duration, userAgent string, ratePerSecond float64) *Prober {
	p := &Prober{
		client: &http.Client{
			Transport: &http.Transport{
				// Certificate errors are not dead pages.
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
				MaxIdleConnsPerHost: 4,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return p
}

// Check probes targetURL. It never fails: a target no request could reach gets status 0.
func (p *Prober) Check(ctx context.Context, targetURL string) entity.ProbeResult {
	start := time.Now()
	result := entity.ProbeResult{TargetURL: targetURL, Method: entity.ProbeMethodHead}

	status, err := p.do(ctx, http.MethodHead, targetURL)
	if err == nil && status != http.StatusMethodNotAllowed && status != http.StatusNotImplemented {
		result.StatusCode = status
		p.observe(result, start)
		return result
	}
	if err != nil {
		slog.Debug("HEAD probe failed, retrying with GET", "url", targetURL, "error", err)
	}

	result.UsedFallback = true
	result.Method = entity.ProbeMethodGet
	headStatus := entity.StatusUnreachable
	if err == nil {
		headStatus = status
	}
	status, err = p.do(ctx, http.MethodGet, targetURL)
	if err != nil {
		slog.Debug("GET probe failed", "url", targetURL, "error", err)
		// A server that answered HEAD is reachable.
		status = headStatus
		if status != entity.StatusUnreachable {
			result.Method = entity.ProbeMethodHead
		}
	}
	result.StatusCode = status
	p.observe(result, start)
	return result
}

// PacingDelay is the longest time the given number of outbound requests can spend waiting for the limiter.
func (p *Prober) PacingDelay(requests int) time.Duration {
	if p.limiter == nil || requests <= 0 {
		return 0
	}
	return time.Duration(float64(requests) / float64(p.limiter.Limit()) * float64(time.Second))
}

func (p *Prober) do(ctx context.Context, method, targetURL string) (int, error) {
	// The pacing wait is not part of the request timeout.
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	// Only the status matters; the body is never read.
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (p *Prober) observe(result entity.ProbeResult, start time.Time) {
	method := string(result.Method)
	metrics.ProbesTotal.WithLabelValues(method, metrics.ProbeResultLabel(result.StatusCode)).Inc()
	metrics.ProbeDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
