package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restou/internal/admin"
	"restou/internal/database"
)

var (
	adminUsername string
	adminPassword string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	Long: `Creates an account able to log into the administration API. Use the
superadmin role for the first account so it can manage the others.`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "account username")
	adminCreateCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "account password")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", string(admin.RoleAdmin), "admin or superadmin")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	role, err := admin.ParseRole(adminRole)
	if err != nil {
		return err
	}

	db, err := database.NewDB(databasePath())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	a, err := admin.NewRepository(db.SQL).Create(cmd.Context(), adminUsername, adminPassword, role)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	cmd.Printf("Created %s %q (id %d).\n", a.Role, a.Username, a.ID)
	return nil
}
