package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restou/internal/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := database.RunMigrations(databasePath()); err != nil {
			return err
		}
		cmd.Println("Migrations applied.")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if migrateSteps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", migrateSteps)
		}
		if err := database.RollbackMigrations(databasePath(), migrateSteps); err != nil {
			return err
		}
		cmd.Printf("Rolled back %d migration(s).\n", migrateSteps)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		version, dirty, err := database.SchemaVersion(databasePath())
		if err != nil {
			return err
		}
		cmd.Printf("Schema version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
