package main

import (
	"fmt"

	"github.com/nebari-dev/modelconfig/internal/server"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the users, audit log and configuration tables for the
configured database and entry model, then exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := server.Bootstrap(configFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database (model: %s)\n", cfg.Database.Driver, cfg.Configuration.Model)
		return nil
	},
}
