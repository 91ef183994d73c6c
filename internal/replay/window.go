// Package replay serves a static navigation listing through a virtualized
// window, the way a recycling list view renders only rows near its scroll
// offset.
package replay

import (
	"context"
	"fmt"

	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
)

// DefaultViewport is the number of rows rendered at once.
const DefaultViewport = 30

// ScrollFraction is the share of the viewport advanced per scroll step.
const ScrollFraction = 0.8

// Window renders a slice of a listing's visible rows. Descendants of a
// collapsed group are not rendered until the group is expanded.
type Window struct {
	items     []navtree.NavItem
	collapsed map[string]bool
	viewport  int
	offset    int
	attached  bool
}

// NewWindow creates a window over listing with the given viewport height in
// rows. Non-positive viewports use DefaultViewport.
func NewWindow(listing *navtree.Listing, viewport int) *Window {
	if viewport <= 0 {
		viewport = DefaultViewport
	}
	w := &Window{
		viewport:  viewport,
		collapsed: make(map[string]bool),
	}
	if listing != nil {
		w.attached = true
		w.items = listing.Items
		for k, v := range listing.Collapsed {
			if v {
				w.collapsed[k] = true
			}
		}
	}
	return w
}

var _ collector.Environment = (*Window)(nil)
var _ collector.Preparer = (*Window)(nil)

// Prepare scrolls back to the top.
func (w *Window) Prepare(ctx context.Context) error {
	if !w.attached {
		return fmt.Errorf("replay: %w: no listing", collector.ErrEnvironmentUnavailable)
	}
	w.offset = 0
	return nil
}

// ExpandVisible expands every collapsed group inside the current window.
func (w *Window) ExpandVisible(ctx context.Context) (int, error) {
	n := 0
	for _, item := range w.window() {
		if item.IsGroup && w.collapsed[item.IdentityKey] {
			delete(w.collapsed, item.IdentityKey)
			n++
		}
	}
	return n, nil
}

// ExtractVisible returns the rows inside the current window.
func (w *Window) ExtractVisible(ctx context.Context) ([]navtree.NavItem, error) {
	rows := w.window()
	out := make([]navtree.NavItem, len(rows))
	copy(out, rows)
	return out, nil
}

// ScrollStep advances the window by ScrollFraction of the viewport.
func (w *Window) ScrollStep(ctx context.Context) (collector.ScrollResult, error) {
	rows := w.rows()
	step := int(float64(w.viewport) * ScrollFraction)
	if step < 1 {
		step = 1
	}

	prev := w.offset
	maxOffset := len(rows) - w.viewport
	if maxOffset < 0 {
		maxOffset = 0
	}
	w.offset += step
	if w.offset > maxOffset {
		w.offset = maxOffset
	}

	// A collapsed group in the last window still has rows to reveal.
	atBottom := w.offset+w.viewport >= len(rows)
	if atBottom {
		for _, item := range w.window() {
			if item.IsGroup && w.collapsed[item.IdentityKey] {
				atBottom = false
				break
			}
		}
	}

	return collector.ScrollResult{
		Advanced: w.offset > prev,
		AtBottom: atBottom,
	}, nil
}

// rows returns all rows not hidden under a collapsed group.
func (w *Window) rows() []navtree.NavItem {
	out := make([]navtree.NavItem, 0, len(w.items))
	hideBelow := -1
	for _, item := range w.items {
		if hideBelow >= 0 {
			if item.Depth > hideBelow {
				continue
			}
			hideBelow = -1
		}
		out = append(out, item)
		if item.IsGroup && w.collapsed[item.IdentityKey] {
			hideBelow = item.Depth
		}
	}
	return out
}

func (w *Window) window() []navtree.NavItem {
	rows := w.rows()
	if w.offset >= len(rows) {
		return nil
	}
	end := w.offset + w.viewport
	if end > len(rows) {
		end = len(rows)
	}
	return rows[w.offset:end]
}

// CollectorConfig adapts base for collecting listing through a Window. A
// static listing has nothing to render between cycles, and the cycle cap
// must at least cover one row per cycle.
func CollectorConfig(base collector.Config, listing *navtree.Listing) collector.Config {
	cc := base
	cc.RootTitle = listing.Title
	cc.RootURL = listing.URL
	cc.SettleDelay = 0
	cc.MaxCycles = max(cc.MaxCycles, len(listing.Items))
	return cc
}
