package main

import (
	"github.com/nebari-dev/modelconfig/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

// @title modelconfig API
// @version 1.0
// @description Typed per-user configuration storage
// @host localhost:8470
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the modelconfig API server",
	Long: `Start the modelconfig API server.

Examples:
  modelconfig serve                    # Use config.yaml and environment
  modelconfig serve --port 8080        # Override port
  modelconfig serve -c /etc/mc.yaml    # Explicit config file

Environment variables:
  MODELCONFIG_SERVER_PORT                     Server port (default: 8470)
  MODELCONFIG_DATABASE_DRIVER                 Database driver: sqlite, postgres, mysql
  MODELCONFIG_DATABASE_DSN                    Database connection string
  MODELCONFIG_AUTH_JWT_SECRET                 JWT signing secret
  MODELCONFIG_CONFIGURATION_ROUTE_PREFIX      Route prefix (default: api)
  MODELCONFIG_CONFIGURATION_REGISTER_ROUTES   Serve the configuration routes (default: true)
  MODELCONFIG_CONFIGURATION_MODEL             Entry model: configuration, versioned
  ADMIN_USERNAME                              Bootstrap admin username
  ADMIN_PASSWORD                              Bootstrap admin password`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	return server.RunWithSignalHandling(server.Config{
		Port:       servePort,
		ConfigFile: configFile,
	})
}
