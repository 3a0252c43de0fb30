// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"landingpress/internal/database"
	"landingpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "landingpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "landingpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanProducts removes test products and their related rows by slug.
func cleanProducts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	s := NewProductStore(db)
	for _, slug := range slugs {
		p, err := s.FindBySlug(context.Background(), slug)
		if err != nil || p == nil {
			continue
		}
		s.Delete(context.Background(), p.ID)
	}
}

// cleanOperators removes test operators by email.
func cleanOperators(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM operators WHERE email = $1", email)
	}
}

// createTestProduct inserts a product with the given slug and registers
// its cleanup.
func createTestProduct(t *testing.T, db *sql.DB, slug string) *models.Product {
	t.Helper()
	t.Cleanup(func() { cleanProducts(t, db, slug) })

	p, err := NewProductStore(db).Create(context.Background(), &models.Product{
		Name:        "Test " + slug,
		Slug:        slug,
		RedirectURL: "https://shop.example.com/" + slug,
	})
	if err != nil {
		t.Fatalf("create product %q: %v", slug, err)
	}
	return p
}

func countRows(t *testing.T, db *sql.DB, table string, productID int64) int {
	t.Helper()
	var n int
	// table is always a literal from the calling test.
	if err := db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE product_id = $1", productID).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
