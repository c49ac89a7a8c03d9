package cmd

import (
	"MenuScout/models"

	"github.com/spf13/cobra"
)

var flagPlace models.PlaceRecord

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Scrape the menu of a single place",
	Long: `Place processes one place described on the command line, without a
place search.

Examples:
  menuscout place --name "Joe's Diner" --website https://joesdiner.example --sink table`,
	Args: cobra.NoArgs,
	RunE: runPlace,
}

func init() {
	rootCmd.AddCommand(placeCmd)
	placeCmd.Flags().StringVar(&flagPlace.Name, "name", "", "Place name")
	placeCmd.Flags().StringVar(&flagPlace.Website, "website", "", "Place website")
	placeCmd.Flags().StringVar(&flagPlace.ProfileURL, "profile-url", "", "Public listing page to scan for menu links")
	placeCmd.Flags().StringVar(&flagPlace.LocalPhoneNumber, "phone", "", "Known phone number")
	placeCmd.Flags().StringVar(&flagPlace.Address, "location", "", "City or address, used by photo search")
	_ = placeCmd.MarkFlagRequired("name")
}

func runPlace(cmd *cobra.Command, args []string) error {
	applySinkFlags()
	if flagSink == "" && cfg.Sink.Kind == "json" {
		cfg.Sink.Kind = "table"
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, appOptions{noBrowser: flagNoBrowser, stdout: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.batch.ProcessOne(ctx, flagPlace, flagPlace.Address)
	if err != nil {
		return err
	}
	return a.sink.Save(ctx, res.Restaurant)
}
