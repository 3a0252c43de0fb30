// Package cli wires the landingpress command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"landingpress/internal/config"
	"landingpress/internal/database"
)

var rootCmd = &cobra.Command{
	Use:   "landingpress",
	Short: "Themeable product landing pages with an operator admin",
	Long: `landingpress serves one landing page per supplement product and an
admin interface where operators edit products, ingredients, why-choose
points and the per-product theme.

Configuration is read from the environment (and a .env file if present).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the default logger: text in
// development, JSON everywhere else.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.IsDev() {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))

	return cfg, nil
}

func seedOptions(cfg *config.Config) database.SeedOptions {
	return database.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SiteURL:       cfg.SiteURL,
	}
}
