package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"todolist-kv/internal/migration"
)

// schemaMigrator is the subset of *migration.Migrator the commands drive
type schemaMigrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

type opener func(databaseURL string) (schemaMigrator, error)

func openMigrator(databaseURL string) (schemaMigrator, error) {
	if databaseURL == "" {
		return migration.NewFromEnv()
	}
	return migration.New(&migration.Config{DatabaseURL: databaseURL})
}

func main() {
	if err := newRootCmd(openMigrator).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the kv_entries schema in Postgres",
		Long: `Applies the embedded SQL migrations for the Postgres KV backend.

Connection settings come from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD,
DB_NAME and DB_SSL_MODE unless --database-url is given.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres:// URL overriding the DB_* variables")

	// withMigrator opens a migrator for the duration of one command
	withMigrator := func(fn func(cmd *cobra.Command, m schemaMigrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := open(databaseURL)
			if err != nil {
				return fmt.Errorf("failed to create migrator: %w", err)
			}
			defer m.Close()
			return fn(cmd, m, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, _ []string) error {
				if err := m.Up(); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, _ []string) error {
				if err := m.Down(); err != nil {
					return fmt.Errorf("failed to rollback migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty)\n", version)
					fmt.Fprintln(cmd.OutOrStdout(), "Warning: database is in a dirty state, use 'force' to fix")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Run n migrations (positive = up, negative = down)",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid number of steps: %w", err)
				}
				if err := m.Steps(n); err != nil {
					return fmt.Errorf("failed to run %d steps: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully ran %d migration steps\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Force the recorded migration version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version number: %w", err)
				}
				if err := m.Force(version); err != nil {
					return fmt.Errorf("failed to force version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forced migration version to %d\n", version)
				return nil
			}),
		},
	)

	return root
}
