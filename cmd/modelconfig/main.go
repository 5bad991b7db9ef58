package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/nebari-dev/modelconfig/docs" // Load swagger docs
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "modelconfig",
	Short: "modelconfig - typed per-user configuration storage",
	Long:  `modelconfig stores typed key/value configuration for users and serves it over a JSON API.`,
	Example: `  # Run the API server
  modelconfig serve

  # Create a user and give it a setting
  modelconfig user create alice
  modelconfig config set theme dark --user alice --type string
  modelconfig config list --user alice

  # Move settings between environments
  modelconfig config export --user alice > alice.yaml
  modelconfig config import alice.yaml --user bob`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml or /etc/modelconfig/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
	)

	serveCmd.GroupID = "server"
	migrateCmd.GroupID = "server"
	userCmd.GroupID = "admin"
	configCmd.GroupID = "admin"

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
