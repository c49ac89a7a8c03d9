// Package cmd implements the menuscout command tree.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"MenuScout/config/environment"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool

	cfg     environment.Config
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "menuscout",
	Short: "MenuScout finds and extracts restaurant menus",
	Long: `MenuScout discovers restaurants through a place search, locates each one's
menu source, extracts structured dish records and matches food photos to them.

Usage:
  menuscout scrape [flags]
  menuscout place --name <name> [flags]
  menuscout serve [flags]`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = environment.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagVerbose {
			cfg.Verbose = true
		}
		return setupLogging(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogging points the global logger at stderr and, when configured, a
// log file that is truncated on every start.
func setupLogging(c environment.Config) error {
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if c.LogFile != "" {
		f, err := os.Create(c.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		out = zerolog.MultiLevelWriter(out, f)
	}
	log.Logger = log.Output(out)
	if c.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
