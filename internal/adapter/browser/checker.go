// Package browser re-checks targets in headless Chrome when plain HTTP probes get no answer,
// typically because a bot filter drops non-browser clients.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ErrNoDocumentResponse is returned when navigation finished without a main document response.
var ErrNoDocumentResponse = errors.New("no document response observed")

// Checker implements repository.BrowserChecker on top of one shared Chrome instance,
// opening a fresh tab per target.
type Checker struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// NewChecker starts headless Chrome. It fails when no Chrome binary can be launched.
func NewChecker(userAgent string, timeout time.Duration) (*Checker, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	// Launch the browser now so every tab shares it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start headless chrome: %w", err)
	}

	return &Checker{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       timeout,
	}, nil
}

// Status navigates to targetURL and returns the HTTP status of the main document.
func (c *Checker) Status(ctx context.Context, targetURL string) (int, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, c.timeout)
	defer timeoutCancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu     sync.Mutex
		status int
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if status == 0 {
			status = int(e.Response.Status)
		}
	})

	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(targetURL),
	)

	mu.Lock()
	defer mu.Unlock()
	if status != 0 {
		return status, nil
	}
	if err != nil {
		return 0, fmt.Errorf("navigate %s: %w", targetURL, err)
	}
	return 0, ErrNoDocumentResponse
}

// Close shuts Chrome down.
func (c *Checker) Close() {
	c.browserCancel()
	c.allocCancel()
}
