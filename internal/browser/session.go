// Package browser drives a documentation site's navigator sidebar in a
// headless Chrome through chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
)

// bottomTolerance is how many pixels short of the end still count as the
// bottom of the list.
const bottomTolerance = 10

// Target identifies the navigator to collect.
type Target struct {
	URL       string // Page whose sidebar is collected
	RootTitle string // Technology title shown above the navigator
	Scope     string // Path the root technology link must contain
	DocPrefix string // Path marking documentation links
}

// Options controls the browser.
type Options struct {
	Headless        bool
	ExecPath        string // Chrome binary; empty uses chromedp's lookup
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	InitialSettle   time.Duration // Pause after the navigator appears
	ExpandSettle    time.Duration // Pause after any group was expanded
	ScrollFraction  float64
}

// DefaultOptions returns the reference timings.
func DefaultOptions() Options {
	return Options{
		Headless:        true,
		NavTimeout:      60 * time.Second,
		SelectorTimeout: 30 * time.Second,
		InitialSettle:   2 * time.Second,
		ExpandSettle:    300 * time.Millisecond,
		ScrollFraction:  0.8,
	}
}

// Session is one browser tab showing the target page. It implements
// collector.Environment and collector.Preparer.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	target Target
	opts   Options
	log    *slog.Logger
}

var _ collector.Environment = (*Session)(nil)
var _ collector.Preparer = (*Session)(nil)

// Open starts a browser, navigates to target.URL and waits for the
// navigator to render. Failures to load are returned as *NavigationError.
func Open(ctx context.Context, target Target, opts Options, log *slog.Logger) (*Session, error) {
	defaults := DefaultOptions()
	if opts.ScrollFraction <= 0 || opts.ScrollFraction > 1 {
		opts.ScrollFraction = defaults.ScrollFraction
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = defaults.NavTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}))

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		target:      target,
		opts:        opts,
		log:         log.With("url", target.URL),
	}

	s.log.Info("navigating")
	navCtx, cancel := context.WithTimeout(tabCtx, opts.NavTimeout)
	defer cancel()
	err := chromedp.Run(navCtx,
		chromedp.Navigate(target.URL),
		waitVisible(navigatorSelector, opts.SelectorTimeout),
		chromedp.Sleep(opts.InitialSettle),
	)
	if err != nil {
		s.Close()
		return nil, &NavigationError{URL: target.URL, Err: err}
	}
	s.log.Info("navigator loaded")
	return s, nil
}

func waitVisible(sel string, timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return chromedp.WaitVisible(sel, chromedp.ByQuery).Do(ctx)
	})
}

// run executes actions in the tab, aborting when either ctx or the session
// ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type scrollerInfo struct {
	Found        bool   `json:"found"`
	ClassName    string `json:"className"`
	ScrollHeight int    `json:"scrollHeight"`
	ClientHeight int    `json:"clientHeight"`
}

// Prepare selects the root technology if another one is showing, locates
// the scroll container and scrolls it to the top.
func (s *Session) Prepare(ctx context.Context) error {
	var current string
	if err := s.run(ctx, chromedp.Evaluate(technologyTitleScript(), &current)); err != nil {
		return fmt.Errorf("read technology title: %w", err)
	}
	s.log.Info("current context", "technology", current)

	if s.target.RootTitle != "" && current != s.target.RootTitle {
		var clicked bool
		if err := s.run(ctx, chromedp.Evaluate(selectRootScript(s.target.RootTitle, s.target.Scope), &clicked)); err != nil {
			return fmt.Errorf("select %s: %w", s.target.RootTitle, err)
		}
		if clicked {
			s.log.Info("navigated back to root technology", "title", s.target.RootTitle)
			if err := s.run(ctx, chromedp.Sleep(s.opts.InitialSettle)); err != nil {
				return err
			}
		}
	}

	var info scrollerInfo
	if err := s.run(ctx, chromedp.Evaluate(locateScrollerScript(), &info)); err != nil {
		return fmt.Errorf("locate scroll container: %w", err)
	}
	if !info.Found {
		return fmt.Errorf("browser: %w: no scrollable navigator container", collector.ErrEnvironmentUnavailable)
	}
	s.log.Info("found scrollable container",
		"class", info.ClassName,
		"client_height", info.ClientHeight,
		"scroll_height", info.ScrollHeight,
	)

	var ok bool
	return s.run(ctx, chromedp.Evaluate(scrollTopScript(), &ok))
}

// ExpandVisible clicks every rendered collapsed group and waits for the
// list to re-render if anything was expanded.
func (s *Session) ExpandVisible(ctx context.Context) (int, error) {
	var n int
	if err := s.run(ctx, chromedp.Evaluate(expandScript(s.target.DocPrefix), &n)); err != nil {
		return 0, fmt.Errorf("expand: %w", err)
	}
	if n > 0 && s.opts.ExpandSettle > 0 {
		if err := s.run(ctx, chromedp.Sleep(s.opts.ExpandSettle)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ExtractVisible reads the rendered cards.
func (s *Session) ExtractVisible(ctx context.Context) ([]navtree.NavItem, error) {
	var rows []rawItem
	if err := s.run(ctx, chromedp.Evaluate(extractScript(), &rows)); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return toNavItems(rows, s.target.URL), nil
}

// ScrollStep scrolls the container by the configured fraction.
func (s *Session) ScrollStep(ctx context.Context) (collector.ScrollResult, error) {
	var res struct {
		Scrolled bool `json:"scrolled"`
		AtBottom bool `json:"atBottom"`
	}
	if err := s.run(ctx, chromedp.Evaluate(scrollScript(s.opts.ScrollFraction, bottomTolerance), &res)); err != nil {
		return collector.ScrollResult{}, fmt.Errorf("scroll: %w", err)
	}
	return collector.ScrollResult{Advanced: res.Scrolled, AtBottom: res.AtBottom}, nil
}

// Linger keeps the browser open for d so the page can be inspected.
func (s *Session) Linger(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	s.log.Info("browser will stay open for inspection", "duration", d)
	err := s.run(ctx, chromedp.Sleep(d))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}
