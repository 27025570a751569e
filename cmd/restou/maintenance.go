package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"restou/internal/database"
	"restou/internal/metrics"
	"restou/internal/storage"
)

var (
	cleanupDays   int
	snapshotsKeep int
	snapshotsDir  string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect and maintain scrape metrics",
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old scrape run records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.NewDB(databasePath())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(cmd.Context(), cleanupDays)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		cmd.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

var metricsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the latest scrape runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.NewDB(databasePath())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		runs, err := metrics.NewStore(db.SQL).Recent(cmd.Context(), 10)
		if err != nil {
			return err
		}
		for _, r := range runs {
			cmd.Printf("%s  %s  days=%d created=%d updated=%d failed=%d %dms\n",
				r.Timestamp.Format("2006-01-02 15:04:05"), r.RunID, r.Days, r.Created, r.Updated, r.Failed, r.LatencyMS)
		}
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Maintain stored scrape snapshots",
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Keep only the newest snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := storage.NewSnapshotStore(snapshotDirectory())
		if err != nil {
			return err
		}
		removed, err := store.Prune(snapshotsKeep)
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d snapshot(s).\n", removed)
		return nil
	},
}

var snapshotsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent snapshot as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := storage.NewSnapshotStore(snapshotDirectory())
		if err != nil {
			return err
		}
		doc, err := store.Latest()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		cmd.Println(string(data))
		return nil
	},
}

// snapshotDirectory resolves --dir, then $SNAPSHOT_PATH, then the default.
func snapshotDirectory() string {
	if snapshotsDir != "" {
		return snapshotsDir
	}
	if dir := os.Getenv("SNAPSHOT_PATH"); dir != "" {
		return dir
	}
	return "data/snapshots"
}

func init() {
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "keep records for the last N days")
	metricsCmd.AddCommand(metricsCleanupCmd, metricsRecentCmd)

	snapshotsPruneCmd.Flags().IntVar(&snapshotsKeep, "keep", 20, "number of snapshots to keep")
	snapshotsCmd.PersistentFlags().StringVar(&snapshotsDir, "dir", "", "snapshot directory (default $SNAPSHOT_PATH or data/snapshots)")
	snapshotsCmd.AddCommand(snapshotsPruneCmd, snapshotsLatestCmd)

	rootCmd.AddCommand(metricsCmd, snapshotsCmd)
}
