package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seuros/nestegg/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabaseURL(func(url string) error {
			if err := database.RunMigrations(url); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Migrations completed")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabaseURL(func(url string) error {
			if err := database.RollbackMigration(url); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Rolled back one migration")
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabaseURL(func(url string) error {
			version, dirty, err := database.GetMigrationVersion(url)
			if err != nil {
				return err
			}
			printMigrationVersion(cmd.OutOrStdout(), version, dirty)
			return nil
		})
	},
}

func printMigrationVersion(w io.Writer, version uint, dirty bool) {
	switch {
	case version == 0:
		_, _ = fmt.Fprintln(w, "No migrations applied")
	case dirty:
		_, _ = fmt.Fprintf(w, "Version %d (dirty, fix manually before migrating)\n", version)
	default:
		_, _ = fmt.Fprintf(w, "Version %d\n", version)
	}
}

// withDatabaseURL resolves the configured database URL and hands it to fn.
func withDatabaseURL(fn func(url string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return database.ErrMissingDatabaseURL
	}
	return fn(cfg.DatabaseURL)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	RootCmd.AddCommand(migrateCmd)
}
