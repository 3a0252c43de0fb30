package cli

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"landingpress/internal/config"
	"landingpress/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial operator and a demo product",
	Long: `Apply pending migrations, then create the operator from ADMIN_EMAIL and
ADMIN_PASSWORD plus one demo product. Tables that already hold rows are left alone.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	return withDB(cmd, func(cfg *config.Config, db *sql.DB) error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db, seedOptions(cfg)); err != nil {
			return err
		}
		slog.Info("seed complete")
		return nil
	})
}
