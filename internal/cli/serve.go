package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"landingpress/internal/cache"
	"landingpress/internal/config"
	"landingpress/internal/database"
	"landingpress/internal/handlers"
	"landingpress/internal/imaging"
	"landingpress/internal/middleware"
	"landingpress/internal/render"
	"landingpress/internal/router"
	"landingpress/internal/session"
	"landingpress/internal/storage"
	"landingpress/internal/store"
)

const (
	loginAttempts   = 5
	loginWindow     = time.Minute
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the public site and the admin interface.

Pending migrations are applied on startup. In development the database is
seeded with an operator and a demo product when empty.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.Seed(ctx, db, seedOptions(cfg)); err != nil {
			return err
		}
	}

	valkey, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkey.Close()

	secureCookies := !cfg.IsDev()
	sessions := session.NewStore(valkey, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("admin templates: %w", err)
	}
	pub, err := render.NewPublic()
	if err != nil {
		return fmt.Errorf("public templates: %w", err)
	}

	uploader, uploadDir, err := newUploader(cfg)
	if err != nil {
		return err
	}
	images := imaging.New(uploader)
	pageCache := cache.NewPageCache(valkey, cache.DefaultPageTTL)
	// Pages rendered by a previous build may use other templates.
	pageCache.InvalidateAll(ctx)

	products := store.NewProductStore(db)
	ingredients := store.NewIngredientStore(db)
	points := store.NewWhyChooseStore(db)
	themes := store.NewThemeStore(db)
	operators := store.NewOperatorStore(db)

	limiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessions,
		Admin:         handlers.NewAdmin(renderer, products, ingredients, points, themes, images, pageCache, cfg.SiteURL),
		Auth:          handlers.NewAuth(renderer, sessions, operators),
		Public:        handlers.NewPublic(pub, products, ingredients, points, themes, pageCache),
		LoginLimiter:  limiter,
		UploadDir:     uploadDir,
		SecureCookies: secureCookies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newUploader picks S3 when credentials are configured and the local upload
// directory otherwise. The returned dir is empty for S3, so the router skips
// the local file server.
func newUploader(cfg *config.Config) (imaging.Uploader, string, error) {
	if cfg.HasS3() {
		client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, "", fmt.Errorf("s3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return client, "", nil
	}

	local, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, "", fmt.Errorf("local storage: %w", err)
	}
	slog.Warn("s3 storage not configured, storing uploads on disk", "dir", local.Dir())
	return local, local.Dir(), nil
}
