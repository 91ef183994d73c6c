package main

import (
	"log/slog"
	"os"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	cfgFile string
	debug   bool
}

var rootOpt rootOpts

var rootCmd = &cobra.Command{
	Use:           "docnav",
	Short:         "reconstruct documentation navigation trees",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpt.cfgFile, "config", "", "YAML config file; environment variables override it")
	rootCmd.PersistentFlags().BoolVarP(&rootOpt.debug, "debug", "d", false, "turn on debug logging")
}

// loadConfig reads the config file when one was given, else the environment.
func loadConfig() (config.Config, error) {
	if rootOpt.cfgFile == "" {
		return config.Load(), nil
	}
	return config.LoadFile(rootOpt.cfgFile)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if rootOpt.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
