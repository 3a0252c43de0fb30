package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"landingpress/internal/config"
	"landingpress/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Long:      `Run the embedded goose migrations. Without an argument all pending migrations are applied.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}

	return withDB(cmd, func(_ *config.Config, db *sql.DB) error {
		switch direction {
		case "down":
			return database.MigrateDown(db)
		case "status":
			return database.MigrationStatus(db)
		default:
			return database.Migrate(db)
		}
	})
}

// withDB loads configuration, opens the database and hands it to fn.
func withDB(cmd *cobra.Command, fn func(cfg *config.Config, db *sql.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cmd.Context(), cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	return fn(cfg, db)
}
