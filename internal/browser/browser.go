// Package browser provides the headless page-fetch collaborator. It owns a
// single Chrome instance for the lifetime of a run and hands rendered HTML
// to the extractor; nothing else in the program talks to the browser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"
)

const defaultPageTimeout = 20 * time.Second

// Fetcher retrieves the rendered HTML of a page, waiting for waitSelector to
// appear. The wait is bounded: a stalled page fails the fetch instead of
// hanging the run.
type Fetcher interface {
	FetchHTML(ctx context.Context, pageURL, waitSelector string) (string, error)
	Close() error
}

// Config defines browser launch settings.
type Config struct {
	// BinPath is the Chrome/Chromium binary. Empty means download a
	// managed browser on first use.
	BinPath string
	// Headful runs a visible window for local selector debugging.
	Headful bool
	// PageTimeout bounds navigation plus the selector wait per page.
	PageTimeout time.Duration
	// MinFetchInterval spaces page loads to stay polite to the sites
	// being watched. Zero disables the limiter.
	MinFetchInterval time.Duration
}

// RodFetcher implements Fetcher on top of a go-rod controlled Chrome.
type RodFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	limiter  *rate.Limiter
	timeout  time.Duration
	log      *slog.Logger
}

// NewRodFetcher launches the browser and connects to it. Flags follow what
// containerized Chrome needs (no sandbox, no /dev/shm, no GPU).
func NewRodFetcher(ctx context.Context, cfg Config, log *slog.Logger) (*RodFetcher, error) {
	bin := cfg.BinPath
	if bin == "" {
		log.Info("no browser binary configured, resolving managed browser")
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return nil, fmt.Errorf("resolving browser binary: %w", err)
		}
		bin = path
	}

	l := launcher.New().
		Headless(!cfg.Headful).
		Bin(bin).
		NoSandbox(true).
		Set("disable-dev-shm-usage", "true").
		Set("disable-gpu", "true").
		Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	timeout := cfg.PageTimeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}

	var limiter *rate.Limiter
	if cfg.MinFetchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinFetchInterval), 1)
	}

	log.Info("browser ready", "bin", bin, "headless", !cfg.Headful)

	return &RodFetcher{
		browser:  b,
		launcher: l,
		limiter:  limiter,
		timeout:  timeout,
		log:      log,
	}, nil
}

// FetchHTML navigates to pageURL in a fresh stealth page and returns the
// rendered HTML once waitSelector is present.
func (f *RodFetcher) FetchHTML(ctx context.Context, pageURL, waitSelector string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for fetch slot: %w", err)
		}
	}

	page, err := stealth.Page(f.browser)
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			f.log.Debug("closing page failed", "url", pageURL, "error", err)
		}
	}()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for page load: %w", err)
	}

	if waitSelector != "" {
		// Element blocks until the selector appears, bounded by the
		// page timeout set above.
		if _, err := page.Element(waitSelector); err != nil {
			return "", fmt.Errorf("waiting for selector %q: %w", waitSelector, err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading page html: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and cleans up a managed launcher.
func (f *RodFetcher) Close() error {
	if err := f.browser.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	f.launcher.Cleanup()
	return nil
}
