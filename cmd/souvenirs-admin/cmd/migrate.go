package cmd

import (
	"fmt"

	"github.com/osouvenir/souvenirs/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			return db.RunMigrations(database.DB, cfg.DBDriver)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			return db.MigrateDown(database.DB, cfg.DBDriver)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			version, err := db.Version(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	return migrateCmd
}
