package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docnav/internal/navtree"
)

const (
	DefaultStabilityThreshold = 3
	DefaultMaxCycles          = 100
	DefaultSettleDelay        = 500 * time.Millisecond
)

// Reason records why a collection run stopped.
type Reason string

const (
	ReasonBottom      Reason = "bottom"
	ReasonStable      Reason = "stable"
	ReasonSafetyLimit Reason = "safety_limit"
)

// Config controls a collection run.
type Config struct {
	RootTitle string // Title of the synthetic root node
	RootURL   string // URL of the synthetic root node

	StabilityThreshold int           // Consecutive cycles without new items before stopping
	MaxCycles          int           // Hard cap; the run stops once the cycle count exceeds it
	SettleDelay        time.Duration // Pause between cycles, 0 disables

	// SweepAtBottom runs one more expand+extract after the bottom is
	// reported, so the final window is merged too. The sweep counts as a
	// cycle and is passed to OnCycle.
	SweepAtBottom bool

	// Filter drops unrelated items. Nil admits everything.
	Filter navtree.Predicate

	// OnCycle, if set, is called after every cycle.
	OnCycle func(CycleReport)
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold: DefaultStabilityThreshold,
		MaxCycles:          DefaultMaxCycles,
		SettleDelay:        DefaultSettleDelay,
	}
}

// CycleReport describes one completed cycle.
type CycleReport struct {
	Cycle        int  `json:"cycle"`
	Expanded     int  `json:"expanded"`
	Visible      int  `json:"visible"`
	New          int  `json:"new"`
	Total        int  `json:"total"`
	StableRounds int  `json:"stable_rounds"`
	AtBottom     bool `json:"at_bottom"`
}

// Stats summarizes a finished run.
type Stats struct {
	Cycles       int           `json:"cycles"`
	Items        int           `json:"items"`
	StableRounds int           `json:"stable_rounds"`
	Reason       Reason        `json:"reason"`
	Duration     time.Duration `json:"duration"`
}

// Result is the outcome of a collection run.
type Result struct {
	Tree  *navtree.TreeNode
	Items []navtree.NavItem // Deduplicated items in first-seen order
	Stats Stats
}

// Incomplete reports whether the run hit the safety limit before the list
// was exhausted.
func (r *Result) Incomplete() bool {
	return r.Stats.Reason == ReasonSafetyLimit
}

// Collector drives an Environment until the list is exhausted and rebuilds
// the navigation tree from what it saw.
type Collector struct {
	env   Environment
	cfg   Config
	log   *slog.Logger
	sleep func(context.Context, time.Duration) error
}

// New creates a collector. Non-positive thresholds fall back to defaults.
func New(env Environment, cfg Config, log *slog.Logger) *Collector {
	if cfg.StabilityThreshold <= 0 {
		cfg.StabilityThreshold = DefaultStabilityThreshold
	}
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.Filter == nil {
		cfg.Filter = navtree.AdmitAll
	}
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		env:   env,
		cfg:   cfg,
		log:   log,
		sleep: sleepCtx,
	}
}

// Collect runs expand/extract/merge/scroll cycles and returns the rebuilt
// tree. It fails with ErrEnvironmentUnavailable if the list cannot be
// located, and with ctx.Err() if the context ends mid-run.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	if c.env == nil {
		return nil, fmt.Errorf("collect: %w: no environment", ErrEnvironmentUnavailable)
	}
	start := time.Now()

	if p, ok := c.env.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ErrEnvironmentUnavailable) {
				return nil, fmt.Errorf("collect: %w", err)
			}
			return nil, fmt.Errorf("collect: %w: %v", ErrEnvironmentUnavailable, err)
		}
	}

	seen := newSeenSet()
	stableRounds := 0
	cycles := 0
	var reason Reason

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cycles++

		report := c.runCycle(ctx, seen)
		report.Cycle = cycles
		if report.New == 0 {
			stableRounds++
		} else {
			stableRounds = 0
		}
		report.StableRounds = stableRounds

		scroll, err := c.env.ScrollStep(ctx)
		if err != nil {
			c.log.Warn("scroll failed", "cycle", cycles, "error", err)
			scroll = ScrollResult{}
		}
		report.AtBottom = scroll.AtBottom

		c.log.Info("collect cycle",
			"cycle", cycles,
			"new", report.New,
			"total", report.Total,
			"stable_rounds", stableRounds,
		)
		if c.cfg.OnCycle != nil {
			c.cfg.OnCycle(report)
		}

		if scroll.AtBottom {
			reason = ReasonBottom
			break
		}
		if stableRounds >= c.cfg.StabilityThreshold {
			reason = ReasonStable
			break
		}
		if cycles > c.cfg.MaxCycles {
			reason = ReasonSafetyLimit
			break
		}

		if err := c.sleep(ctx, c.cfg.SettleDelay); err != nil {
			return nil, err
		}
	}

	if reason == ReasonBottom && c.cfg.SweepAtBottom {
		if err := c.sleep(ctx, c.cfg.SettleDelay); err != nil {
			return nil, err
		}
		cycles++
		report := c.runCycle(ctx, seen)
		report.Cycle = cycles
		report.StableRounds = stableRounds
		report.AtBottom = true
		c.log.Info("final sweep", "cycle", cycles, "new", report.New, "total", report.Total)
		if c.cfg.OnCycle != nil {
			c.cfg.OnCycle(report)
		}
	}

	switch reason {
	case ReasonBottom:
		c.log.Info("reached bottom of list", "cycles", cycles)
	case ReasonStable:
		c.log.Info("no new items, stopping", "cycles", cycles, "stable_rounds", stableRounds)
	case ReasonSafetyLimit:
		c.log.Warn("reached maximum cycle limit, result may be incomplete", "max_cycles", c.cfg.MaxCycles)
	}

	items := seen.list()
	res := &Result{
		Tree:  navtree.BuildTree(c.cfg.RootTitle, c.cfg.RootURL, items),
		Items: items,
		Stats: Stats{
			Cycles:       cycles,
			Items:        len(items),
			StableRounds: stableRounds,
			Reason:       reason,
			Duration:     time.Since(start),
		},
	}
	c.log.Info("collected navigation items", "items", len(items), "reason", reason)
	return res, nil
}

// runCycle expands, extracts and merges one snapshot. Failures of either
// capability are logged and the cycle continues with what it has.
func (c *Collector) runCycle(ctx context.Context, seen *seenSet) CycleReport {
	var report CycleReport

	expanded, err := c.env.ExpandVisible(ctx)
	if err != nil {
		c.log.Warn("expand failed", "error", err)
	}
	report.Expanded = expanded

	snapshot, err := c.env.ExtractVisible(ctx)
	if err != nil {
		c.log.Warn("extract failed", "error", err)
		snapshot = nil
	}

	admitted := make([]navtree.NavItem, 0, len(snapshot))
	for _, item := range snapshot {
		if c.cfg.Filter(item) {
			admitted = append(admitted, item)
		}
	}
	report.Visible = len(admitted)
	report.New = seen.merge(admitted)
	report.Total = seen.len()
	return report
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
