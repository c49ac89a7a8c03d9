package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagNoBrowser bool
	flagLocations []string
	flagQuery     string
	flagWorkers   int
	flagMaxPages  int
	flagSink      string
	flagSinkDSN   string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search places in each location and scrape their menus",
	Long: `Scrape runs a place search for every configured location, follows
pagination and processes every place found.

Examples:
  menuscout scrape
  menuscout scrape --location "Boston, MA" --workers 4 --sink sqlite --sink-dsn menus.db`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.PersistentFlags().BoolVar(&flagNoBrowser, "no-browser", false, "Use plain HTTP instead of a headless browser for site fallback")
	rootCmd.PersistentFlags().StringVar(&flagSink, "sink", "", "Output sink: json, table, sqlite or firestore")
	rootCmd.PersistentFlags().StringVar(&flagSinkDSN, "sink-dsn", "", "Sink location (sqlite file path)")

	scrapeCmd.Flags().StringSliceVar(&flagLocations, "location", nil, "Location to search (repeatable)")
	scrapeCmd.Flags().StringVar(&flagQuery, "query", "", "Place search query (default from config)")
	scrapeCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Places processed in parallel")
	scrapeCmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "Result pages per location (0 = all)")
}

// applySinkFlags lets command line flags override the sink config.
func applySinkFlags() {
	if flagSink != "" {
		cfg.Sink.Kind = flagSink
	}
	if flagSinkDSN != "" {
		cfg.Sink.DSN = flagSinkDSN
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	if len(flagLocations) > 0 {
		cfg.Batch.Locations = flagLocations
	}
	if flagQuery != "" {
		cfg.Batch.Query = flagQuery
	}
	if flagWorkers > 0 {
		cfg.Batch.Workers = flagWorkers
	}
	applySinkFlags()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{noBrowser: flagNoBrowser, placeSearch: true, stdout: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer a.close()
	a.batch.Options.MaxPages = flagMaxPages

	stats, err := a.batch.Run(ctx)
	log.Info().Int("places", stats.Places).Int("dishes", stats.Dishes).Int("saved", stats.Saved).Msg("scrape finished")
	if err != nil {
		return fmt.Errorf("scrape interrupted: %w", err)
	}
	return nil
}
