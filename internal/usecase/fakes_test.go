package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
)

// fakeChecker answers from a status table keyed by URL; unknown URLs are unreachable.
type fakeChecker struct {
	statuses map[string]int
	delay    time.Duration

	mu       sync.Mutex
	checked  []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeChecker) Check(ctx context.Context, targetURL string) entity.ProbeResult {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.checked = append(f.checked, targetURL)
	f.mu.Unlock()

	status, ok := f.statuses[targetURL]
	if !ok {
		return entity.ProbeResult{TargetURL: targetURL, StatusCode: 0, UsedFallback: true, Method: entity.ProbeMethodGet}
	}
	return entity.ProbeResult{TargetURL: targetURL, StatusCode: status, Method: entity.ProbeMethodHead}
}

type fakeBrowser struct {
	statuses map[string]int
}

func (f *fakeBrowser) Status(ctx context.Context, targetURL string) (int, error) {
	status, ok := f.statuses[targetURL]
	if !ok {
		return 0, errors.New("navigation failed")
	}
	return status, nil
}

type fakeSource struct {
	fetch *entity.BacklinkFetch
	err   error
	calls int
}

func (f *fakeSource) FetchBacklinks(ctx context.Context, domain string) (*entity.BacklinkFetch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fetch, nil
}

type fakeLimiter struct {
	checkErr error
	released int
	allowed  bool
}

func (f *fakeLimiter) CheckAndMark(ctx context.Context, domain string, day time.Time) (bool, error) {
	return f.allowed, f.checkErr
}

func (f *fakeLimiter) Release(ctx context.Context, domain string, day time.Time) error {
	f.released++
	return nil
}

type fakeScanRepo struct {
	saved   []*entity.ScanResult
	saveErr error
	lastLim int
}

func (f *fakeScanRepo) Save(ctx context.Context, scan *entity.ScanResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, scan)
	return nil
}

func (f *fakeScanRepo) FindByID(ctx context.Context, id string) (*entity.ScanResult, error) {
	for _, s := range f.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrScanNotFound
}

func (f *fakeScanRepo) ListByDomain(ctx context.Context, domain string, limit int) ([]*entity.ScanResult, error) {
	f.lastLim = limit
	var out []*entity.ScanResult
	for _, s := range f.saved {
		if s.Domain == domain {
			out = append(out, s)
		}
	}
	return out, nil
}
