package config

import (
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/dgallion1/docnav/internal/browser"
	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
)

// Collector returns the collection settings. Root and filter are left to
// the caller since they depend on the source being collected.
func (c Config) Collector() collector.Config {
	return collector.Config{
		StabilityThreshold: c.StabilityThreshold,
		MaxCycles:          c.MaxCycles,
		SettleDelay:        c.SettleDelay,
		SweepAtBottom:      c.SweepAtBottom,
	}
}

// Browser returns the chromedp session options.
func (c Config) Browser() browser.Options {
	return browser.Options{
		Headless:        c.Headless,
		ExecPath:        c.ChromePath,
		NavTimeout:      c.NavTimeout,
		SelectorTimeout: c.SelectorTimeout,
		InitialSettle:   c.InitialSettle,
		ExpandSettle:    c.ExpandSettle,
		ScrollFraction:  c.ScrollFraction,
	}
}

// Target returns the configured navigator target.
func (c Config) Target() browser.Target {
	return browser.Target{
		URL:       c.TargetURL,
		RootTitle: c.RootTitle,
		Scope:     c.Scope,
		DocPrefix: c.DocPrefix,
	}
}

// ScopeFilter returns the relevance filter for the configured target.
func (c Config) ScopeFilter() navtree.ScopeFilter {
	return navtree.ScopeFilter{
		RootTitle: c.RootTitle,
		Scope:     c.Scope,
		DocPrefix: c.DocPrefix,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTarget points the config at another navigator page. A URL other than
// the configured one brings its own scope, derived from its last path
// segment, and no technology switch. Non-empty rootTitle and scope override
// either way.
func (c Config) WithTarget(targetURL, rootTitle, scope string) Config {
	if targetURL != "" && targetURL != c.TargetURL {
		c.TargetURL = targetURL
		c.RootTitle = ""
		c.Scope = ScopeFromURL(targetURL)
	}
	if rootTitle != "" {
		c.RootTitle = rootTitle
	}
	if scope != "" {
		c.Scope = scope
	}
	return c
}

// TreeTitle is the title of the synthetic root: RootTitle, or the target
// URL when no technology is named.
func (c Config) TreeTitle() string {
	if c.RootTitle != "" {
		return c.RootTitle
	}
	return c.TargetURL
}

// ScopeFromURL returns "/" plus the lowercased last path segment, e.g.
// "/uikit" for https://developer.apple.com/documentation/uikit.
func ScopeFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return "/" + strings.ToLower(base)
}
