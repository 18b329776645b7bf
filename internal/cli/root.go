// Package cli implements the timesheet-portal commands.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "timesheet-portal",
	Short: "Web portal for timesheets, expenses and leave",
	Long: `timesheet-portal serves the dashboard and section pages of the
timesheet application, rendering data read from the REST backend.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/local.yaml", "Path to configuration file")

	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(serveCmd)
}
