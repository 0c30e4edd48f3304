package main

import (
	"os"

	"github.com/osouvenir/souvenirs/cmd/souvenirs-admin/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "souvenirs-admin",
		Short:         "Maintenance tasks for the souvenirs database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
