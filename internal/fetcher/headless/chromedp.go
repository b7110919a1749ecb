// Package headless drives YouTube search result pages with headless Chrome
// via chromedp and hands out per-request search sessions.
package headless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/shorts"
)

const searchHome = "https://www.youtube.com"

// Config controls the behavior of the headless search fetcher.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleDelay is how long to wait after submitting the search before
	// reading results.
	SettleDelay time.Duration
	// ScrollCount scroll-to-bottom rounds expand the result list.
	ScrollCount int
	ScrollPause time.Duration
	// MaxSessions bounds concurrent browser tabs; 0 means unbounded.
	MaxSessions int
}

// Fetcher implements shorts.PageFetcher using a shared Chrome exec
// allocator. Each session gets its own tab context.
type Fetcher struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// New creates the fetcher and its exec allocator. The allocator lives for
// the process; individual sessions are tabs on top of it.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 5 * time.Second
	}
	if cfg.ScrollCount <= 0 {
		cfg.ScrollCount = 3
	}
	if cfg.ScrollPause <= 0 {
		cfg.ScrollPause = 2 * time.Second
	}
	var limiter chan struct{}
	if cfg.MaxSessions > 0 {
		limiter = make(chan struct{}, cfg.MaxSessions)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// Close cancels the allocator context and with it any open tabs.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// NewSession acquires a browser tab for one pipeline run.
func (f *Fetcher) NewSession(ctx context.Context) (shorts.SearchSession, error) {
	if err := f.acquire(ctx); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(f.allocator)
	return &session{
		fetcher:   f,
		tabCtx:    tabCtx,
		tabCancel: tabCancel,
	}, nil
}

func (f *Fetcher) acquire(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	select {
	case f.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("browser slot wait canceled: %w", ctx.Err())
	}
}

func (f *Fetcher) release() {
	if f.limiter == nil {
		return
	}
	select {
	case <-f.limiter:
	default:
	}
}

type session struct {
	fetcher   *Fetcher
	tabCtx    context.Context
	tabCancel context.CancelFunc
	closeOnce sync.Once
}

// Close tears down the tab and releases the session slot. Safe to call on
// every exit path.
func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.tabCancel()
		s.fetcher.release()
	})
}

// Search submits the query through the site search box, waits for the
// results to settle, expands them with a fixed number of scrolls and
// returns the rendered result nodes.
func (s *session) Search(ctx context.Context, query string) ([]*goquery.Selection, error) {
	taskCtx, cancel := context.WithTimeout(s.tabCtx, s.fetcher.cfg.NavigationTimeout)
	defer cancel()

	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	start := time.Now()
	html, err := s.runSearch(taskCtx, query)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}
	nodes, err := ParseResultNodes(html)
	if err != nil {
		return nil, err
	}
	s.fetcher.logger.Debug("search page rendered",
		zap.String("query", query),
		zap.Int("results", len(nodes)),
		zap.Duration("took", time.Since(start)),
	)
	return nodes, nil
}

func (s *session) runSearch(ctx context.Context, query string) (string, error) {
	cfg := s.fetcher.cfg
	var html string

	actions := []chromedp.Action{network.Enable()}
	if cfg.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(cfg.UserAgent))
	}
	actions = append(actions,
		chromedp.Navigate(searchHome),
		chromedp.WaitVisible(`input#search`, chromedp.ByQuery),
		chromedp.SendKeys(`input#search`, query+kb.Enter, chromedp.ByQuery),
		chromedp.Sleep(cfg.SettleDelay),
	)
	for i := 0; i < cfg.ScrollCount; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.documentElement.scrollHeight);`, nil),
			chromedp.Sleep(cfg.ScrollPause),
		)
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", err
	}
	return html, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
