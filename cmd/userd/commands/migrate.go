package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/pkg/config"
	"github.com/veterinaryhq/userd/pkg/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations against the configured PostgreSQL database.

This command applies pending schema migrations. It is required after
upgrading userd when schema changes have been made, unless auto_migrate
is enabled in the database configuration.

Examples:
  # Run migrations with default config
  userd migrate

  # Run migrations with custom config
  userd migrate --config /etc/userd/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("running database migrations",
		"host", cfg.Database.Host,
		"database", cfg.Database.Database)

	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := postgres.MigrationVersion(&cfg.Database)
	if err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema is dirty at version %d; manual intervention required", version)
	}

	fmt.Printf("Migrations completed successfully (schema version: %d)\n", version)
	return nil
}
