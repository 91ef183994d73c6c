package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/output"
	"github.com/dgallion1/docnav/internal/replay"
	"github.com/dgallion1/docnav/internal/source"
	"github.com/spf13/cobra"
)

type outlineOpts struct {
	out      string
	title    string
	viewport int
}

var outlineOpt outlineOpts

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "rebuild the navigation tree of a saved document",
	Args:  cobra.ExactArgs(1),
	Example: `docnav outline sidebar.html
docnav outline toc.md --out toc.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		path := args[0]

		parser, err := source.ForFile(path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		listing, err := parser.Parse(f, path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if outlineOpt.title != "" {
			listing.Title = outlineOpt.title
		}

		viewport := cfg.ReplayViewport
		if outlineOpt.viewport > 0 {
			viewport = outlineOpt.viewport
		}

		cc := replay.CollectorConfig(cfg.Collector(), listing)
		res, err := collector.New(replay.NewWindow(listing, viewport), cc, log).Collect(cmd.Context())
		if err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		if res.Incomplete() {
			log.Warn("safety limit reached, tree may be incomplete", "cycles", res.Stats.Cycles)
		}

		if outlineOpt.out == "" {
			return output.Encode(cmd.OutOrStdout(), res.Tree)
		}
		if err := output.WriteFile(outlineOpt.out, res.Tree); err != nil {
			return err
		}
		log.Info("tree written", "path", outlineOpt.out, "items", res.Stats.Items)
		return nil
	},
}

func init() {
	f := outlineCmd.Flags()
	f.StringVarP(&outlineOpt.out, "out", "o", "", "output JSON path (default stdout)")
	f.StringVar(&outlineOpt.title, "title", "", "root title (default from the document)")
	f.IntVar(&outlineOpt.viewport, "viewport", 0, "rows rendered per window (default from REPLAY_VIEWPORT)")
	rootCmd.AddCommand(outlineCmd)
}
