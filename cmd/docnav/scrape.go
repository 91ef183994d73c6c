package main

import (
	"fmt"
	"time"

	"github.com/dgallion1/docnav/internal/browser"
	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/dgallion1/docnav/internal/output"
	"github.com/spf13/cobra"
)

type scrapeOpts struct {
	url       string
	rootTitle string
	scope     string
	out       string
	maxCycles int
	headless  bool
	linger    time.Duration
}

var scrapeOpt scrapeOpts

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "collect the navigator sidebar of a live documentation site",
	Args:  cobra.NoArgs,
	Example: `docnav scrape
docnav scrape --url https://developer.apple.com/documentation/uikit --root-title UIKit --scope /uikit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		cfg = cfg.WithTarget(scrapeOpt.url, scrapeOpt.rootTitle, scrapeOpt.scope)
		if flags.Changed("out") {
			cfg.OutputPath = scrapeOpt.out
		}
		if flags.Changed("max-cycles") {
			cfg.MaxCycles = scrapeOpt.maxCycles
		}
		if flags.Changed("headless") {
			cfg.Headless = scrapeOpt.headless
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := newLogger(cfg)
		ctx := cmd.Context()

		sess, err := browser.Open(ctx, cfg.Target(), cfg.Browser(), log)
		if err != nil {
			return err
		}
		defer sess.Close()

		cc := cfg.Collector()
		cc.RootTitle = cfg.TreeTitle()
		cc.RootURL = cfg.TargetURL
		cc.Filter = cfg.ScopeFilter().Predicate()
		cc.OnCycle = func(r collector.CycleReport) {
			log.Info("cycle", "cycle", r.Cycle, "visible", r.Visible, "new", r.New, "total", r.Total)
		}

		res, err := collector.New(sess, cc, log).Collect(ctx)
		if err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		if res.Incomplete() {
			log.Warn("safety limit reached, tree may be incomplete", "cycles", res.Stats.Cycles)
		}

		if err := output.WriteFile(cfg.OutputPath, res.Tree); err != nil {
			return err
		}
		log.Info("tree written",
			"path", cfg.OutputPath,
			"nodes", navtree.Count(res.Tree),
			"items", res.Stats.Items,
			"reason", res.Stats.Reason,
		)

		if scrapeOpt.linger > 0 && !cfg.Headless {
			return sess.Linger(ctx, scrapeOpt.linger)
		}
		return nil
	},
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeOpt.url, "url", "", "navigator page URL (default from TARGET_URL)")
	f.StringVar(&scrapeOpt.rootTitle, "root-title", "", "title of the technology to collect (default from ROOT_TITLE unless --url names another page)")
	f.StringVar(&scrapeOpt.scope, "scope", "", "path fragment that in-scope links contain (default derived from --url)")
	f.StringVarP(&scrapeOpt.out, "out", "o", "", "output JSON path")
	f.IntVar(&scrapeOpt.maxCycles, "max-cycles", 0, "safety limit on collection cycles")
	f.BoolVar(&scrapeOpt.headless, "headless", true, "run Chrome without a window")
	f.DurationVar(&scrapeOpt.linger, "linger", 0, "keep a headed browser open this long after collecting")
	rootCmd.AddCommand(scrapeCmd)
}
