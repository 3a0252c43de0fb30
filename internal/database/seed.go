package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SeedOptions controls the data written by Seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	SiteURL       string
}

// Seed creates a default operator and, when the catalog is empty, one demo
// product with ingredients and why-choose points. It is a no-op on
// tables that already hold rows. The operator must enroll in 2FA on first login.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if err := seedOperator(ctx, db, opts); err != nil {
		return err
	}
	return seedDemoProduct(ctx, db, opts.SiteURL)
}

func seedOperator(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operators").Scan(&count); err != nil {
		return fmt.Errorf("seed check operators: %w", err)
	}
	if count > 0 {
		slog.Info("operators already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO operators (email, password_hash, display_name, totp_enabled)
		VALUES ($1, $2, $3, FALSE)
	`, opts.AdminEmail, string(hash), "Admin")
	if err != nil {
		return fmt.Errorf("seed insert operator: %w", err)
	}

	slog.Info("database seeded with default operator", "email", opts.AdminEmail)
	return nil
}

func seedDemoProduct(ctx context.Context, db *sql.DB, siteURL string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("seed check products: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	const slug = "daily-greens"
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (product_id, name, description, slug, redirect_url, preview_url, money_back_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, "demo000001", "Daily Greens",
		"A **whole-food** greens blend with 12 superfoods in every scoop.",
		slug, "https://checkout.example.com/daily-greens",
		strings.TrimRight(siteURL, "/")+"/p/"+slug, 60,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed insert product: %w", err)
	}

	ingredients := []struct {
		title, desc string
	}{
		{"Spirulina", "Blue-green algae rich in protein and iron."},
		{"Wheatgrass", "Young wheat shoots packed with chlorophyll."},
		{"Ashwagandha", "Adaptogenic root traditionally used for balance."},
	}
	for i, ing := range ingredients {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (product_id, title, description, display_order)
			VALUES ($1, $2, $3, $4)
		`, id, ing.title, ing.desc, i); err != nil {
			return fmt.Errorf("seed insert ingredient %s: %w", ing.title, err)
		}
	}

	points := []string{"Third-party lab tested", "No artificial sweeteners", "Made in small batches"}
	for i, title := range points {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO why_choose_points (product_id, title, description, display_order)
			VALUES ($1, $2, '', $3)
		`, id, title, i); err != nil {
			return fmt.Errorf("seed insert point %s: %w", title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	slog.Info("database seeded with demo product", "slug", slug)
	return nil
}
