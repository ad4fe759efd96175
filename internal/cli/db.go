package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/defendercheck/internal/config"
	"github.com/lucasnoah/defendercheck/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		_, cleanup, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to drop all recorded runs without --yes")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		d, cleanup, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := d.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
		return nil
	},
}

// openDB connects to the configured database and migrates it.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, func(), error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("no database configured (set database.url or %s)", config.EnvDatabaseURL)
	}
	d, err := db.Open(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}

func init() {
	dbResetCmd.Flags().Bool("yes", false, "confirm dropping every table")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
}
