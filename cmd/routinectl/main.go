package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "routinectl",
	Short: "routinectl generates weekly class routines and manages the routine database",
	Long: `routinectl runs the routine generator against CSV reference data without a
database, and applies schema migrations for the API server.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
