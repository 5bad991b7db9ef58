package main

import (
	"fmt"

	"github.com/nebari-dev/modelconfig/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long:  `Print the version of modelconfig.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "modelconfig version %s (%s, %s/%s)\n", info.Version, info.GoVersion, info.OS, info.Arch)
	},
}
