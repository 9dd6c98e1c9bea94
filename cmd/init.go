package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/viberx/viberx/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the viberx database",
	Long:  `Creates the SQLite database file and applies the schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")

		if _, err := os.Stat(dbPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("database already exists at %s (use --force to reinitialize)", dbPath)
			}
		}

		database, err := db.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer database.Close()

		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		fmt.Printf("Database initialized at %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("db", "viberx.db", "Path to database file")
	initCmd.Flags().Bool("force", false, "Reinitialize even if the database exists")
}
