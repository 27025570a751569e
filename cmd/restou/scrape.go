package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var scrapeJSON bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the restaurant page once and update the menus",
	Long: `Fetches the configured CROUS restaurant page, normalizes it and
upserts one menu per date and meal period. Menus that fail to save are
reported while the rest are still written.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "print the scraped document as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.db.Close()

	report, scrapeErr := svc.app.ScrapeMenus(cmd.Context())

	if scrapeJSON {
		data, err := json.MarshalIndent(report.Document, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	cmd.Printf("Run %s: %d days, %d created, %d updated, %d failed (%s)\n",
		report.RunID, len(report.Document), report.Created, report.Updated, report.Failed, report.Duration)

	if scrapeErr != nil {
		return fmt.Errorf("scrape failed: %w", scrapeErr)
	}
	return nil
}
