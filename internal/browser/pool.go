package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned when a page is requested after Shutdown.
var ErrPoolClosed = errors.New("browser pool is closed")

// Pool is a lazily started headless browser shared by scraping
// providers. The underlying browser process is launched on the first
// Acquire call, never at construction, so runs that use no scraping
// provider never pay the startup cost.
//
// Design decision: one browser process with bounded concurrent pages
// instead of a browser per provider. Browser processes are hundreds of
// megabytes each; incognito pages are cheap and give the same isolation.
type Pool struct {
	sessions          int64
	navigationTimeout time.Duration
	browserBin        string

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool

	sem *semaphore.Weighted
}

// NewPool creates a Pool that allows up to sessions concurrent pages.
// browserBin optionally pins the browser binary path; when empty the
// launcher locates or downloads one.
func NewPool(sessions int, navigationTimeout time.Duration, browserBin string) *Pool {
	if sessions < 1 {
		sessions = 1
	}
	return &Pool{
		sessions:          int64(sessions),
		navigationTimeout: navigationTimeout,
		browserBin:        browserBin,
		sem:               semaphore.NewWeighted(int64(sessions)),
	}
}

// start launches the browser process. Callers must hold p.mu.
func (p *Pool) start() error {
	if p.browser != nil {
		return nil
	}

	l := launcher.New().Headless(true).NoSandbox(true)
	if p.browserBin != "" {
		l = l.Bin(p.browserBin)
	}

	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("connect to browser: %w", err)
	}

	p.launcher = l
	p.browser = b
	return nil
}

// Acquire returns an isolated page navigated to url. It blocks until a
// session slot is free or ctx is done. The caller must call Release
// when finished with the page.
func (p *Pool) Acquire(ctx context.Context, url string) (*rod.Page, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return nil, ErrPoolClosed
	}
	if err := p.start(); err != nil {
		p.mu.Unlock()
		p.sem.Release(1)
		return nil, err
	}
	browser := p.browser
	p.mu.Unlock()

	page, err := p.openPage(ctx, browser, url)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	return page, nil
}

func (p *Pool) openPage(ctx context.Context, browser *rod.Browser, url string) (*rod.Page, error) {
	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	page = page.Context(ctx)
	if p.navigationTimeout > 0 {
		page = page.Timeout(p.navigationTimeout)
	}

	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return page, nil
}

// Release closes the page and frees its session slot. Safe to call
// with a nil page after a failed Acquire path.
func (p *Pool) Release(page *rod.Page) {
	if page == nil {
		return
	}
	_ = page.Close()
	p.sem.Release(1)
}

// Started reports whether the browser process has been launched.
func (p *Pool) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.browser != nil
}

// Shutdown closes the browser process if it was ever started. The pool
// cannot be reused afterwards.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.browser == nil {
		return nil
	}

	err := p.browser.Close()
	p.launcher.Cleanup()
	p.browser = nil
	p.launcher = nil
	return err
}
