package commands

import (
	"context"
	"fmt"

	"github.com/sharadkumardubey/billify-trip-generator/cmd/billifyctl/output"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status]",
	Short: "Run database migrations",
	Long: `Run the embedded goose migrations against the database configured by DB_* variables.

Examples:
  billifyctl migrate up        # Apply all pending migrations
  billifyctl migrate down      # Roll back the latest migration
  billifyctl migrate status    # Show applied and pending migrations`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context, command string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	output.Info("Running migrate %s on %s/%s", command, cfg.Database.Host, cfg.Database.Name)
	if err := repository.Migrate(ctx, db.DB, command); err != nil {
		return err
	}

	output.Success("migrate %s complete", command)
	return nil
}
