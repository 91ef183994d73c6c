package collector

import (
	"context"
	"errors"

	"github.com/dgallion1/docnav/internal/navtree"
)

// ErrEnvironmentUnavailable means the scrollable list could not be located,
// so no collection was attempted.
var ErrEnvironmentUnavailable = errors.New("environment unavailable")

// ScrollResult reports the outcome of one scroll step.
type ScrollResult struct {
	Advanced bool // Window moved
	AtBottom bool // Window reached the end of the list
}

// Environment is the rendered list the collector drives. Calls are made
// one at a time and never concurrently.
type Environment interface {
	// ExpandVisible expands collapsed groups in the current window and
	// returns how many were expanded.
	ExpandVisible(ctx context.Context) (int, error)

	// ExtractVisible returns the currently rendered items in visual order.
	ExtractVisible(ctx context.Context) ([]navtree.NavItem, error)

	// ScrollStep advances the window by a fraction of the viewport.
	ScrollStep(ctx context.Context) (ScrollResult, error)
}

// Preparer is implemented by environments that need to locate their list
// and reset it to the top before the first cycle.
type Preparer interface {
	Prepare(ctx context.Context) error
}
