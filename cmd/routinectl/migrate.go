package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/class-routine-api/pkg/config"
	"github.com/noah-isme/class-routine-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the routine schema",
	Long:      `Runs the SQL migrations in DB_MIGRATIONS_PATH against the database configured by the environment or .env file.`,
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		direction := database.Direction(args[0])
		if err := database.Migrate(cfg.Database, direction); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations %s complete\n", direction)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
