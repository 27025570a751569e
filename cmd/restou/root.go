package main

import (
	"github.com/spf13/cobra"

	"restou/internal/config"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "restou",
	Short: "Resto U menu and feedback service",
	Long: `restou serves the Resto U feedback API, scrapes the CROUS restaurant
page into the menu database and runs maintenance tasks.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $DATABASE_PATH or "+config.DefaultDatabasePath+")")
}

// databasePath returns the --db flag or the environment setting.
func databasePath() string {
	if dbPath != "" {
		return dbPath
	}
	return config.DatabasePathFromEnv()
}

// loadConfig reads the full configuration, honouring --db.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg, nil
}
