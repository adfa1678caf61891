package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpRenderer drives a headless Chrome to load pages whose listings
// only exist after client-side hydration (Teamtailor and friends).
type ChromedpRenderer struct {
	timeout   time.Duration
	userAgent string
	settle    time.Duration // extra wait after the DOM is ready
}

type RenderOptions struct {
	Timeout   time.Duration
	UserAgent string
	Settle    time.Duration
}

func NewChromedpRenderer(opts RenderOptions) *ChromedpRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}
	return &ChromedpRenderer{
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		settle:    opts.Settle,
	}
}

// Render loads url in a fresh headless tab and returns the hydrated
// document markup.
func (r *ChromedpRenderer) Render(ctx context.Context, url string) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
	)
	if r.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(r.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
