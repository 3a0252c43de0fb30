// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"landingpress/internal/models"
)

// ProductStore handles all product database operations, including the
// cascading create and delete of a product's related rows.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// publicIDLength is the number of hex characters in a generated public id.
const publicIDLength = 10

// NewPublicID returns a short random identifier for public product URLs.
func NewPublicID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:publicIDLength]
}

const productColumns = `id, product_id, name, description, slug, redirect_url, preview_url,
	money_back_days, product_image, badge_image, created_at, updated_at`

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	err := s.Scan(
		&p.ID, &p.PublicID, &p.Name, &p.Description, &p.Slug, &p.RedirectURL, &p.PreviewURL,
		&p.MoneyBackDays, &p.ProductImage, &p.BadgeImage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all products, newest first.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of products.
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// FindByID retrieves a product by its internal numeric id. Returns nil if not found.
func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.findOne(ctx, "id", id)
}

// FindByPublicID retrieves a product by its short public id. Returns nil if not found.
func (s *ProductStore) FindByPublicID(ctx context.Context, publicID string) (*models.Product, error) {
	return s.findOne(ctx, "product_id", publicID)
}

// FindBySlug retrieves a product by its slug. Returns nil if not found.
func (s *ProductStore) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findOne(ctx, "slug", slug)
}

// findOne looks up a single product by one of the fixed key columns above.
func (s *ProductStore) findOne(ctx context.Context, column string, key any) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE `+column+` = $1`, key)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by %s: %w", column, err)
	}
	return p, nil
}

// Create inserts a product. A public id is generated when PublicID is empty.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	return insertProduct(ctx, s.db, p)
}

// CreateWithRelations inserts a product together with an optional theme
// patch, ingredients and why-choose points. Everything is written in one
// transaction, so a failure leaves no partial product behind.
func (s *ProductStore) CreateWithRelations(ctx context.Context, b models.ProductBundle) (*models.Product, error) {
	var created *models.Product
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := insertProduct(ctx, tx, b.Product)
		if err != nil {
			return err
		}
		if len(b.Theme) > 0 {
			if _, err := upsertTheme(ctx, tx, p.ID, b.Theme); err != nil {
				return err
			}
		}
		for i := range b.Ingredients {
			b.Ingredients[i].ProductID = p.ID
			if _, err := insertIngredient(ctx, tx, &b.Ingredients[i]); err != nil {
				return err
			}
		}
		for i := range b.Points {
			b.Points[i].ProductID = p.ID
			if _, err := insertPoint(ctx, tx, &b.Points[i]); err != nil {
				return err
			}
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update saves the editable fields of a product. Reports false if the
// product does not exist.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			name = $1, description = $2, slug = $3, redirect_url = $4, preview_url = $5,
			money_back_days = $6, product_image = $7, badge_image = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Name, p.Description, p.Slug, p.RedirectURL, p.PreviewURL,
		p.MoneyBackDays, p.ProductImage, p.BadgeImage, p.ID)
	if err != nil {
		return false, fmt.Errorf("update product: %w", mapErr(err))
	}
	return affected(res)
}

// Delete removes a product and everything that references it: theme,
// ingredients and why-choose points. Reports false if the product did not exist.
func (s *ProductStore) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := deleteTheme(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete product ingredients: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM why_choose_points WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete product points: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		found, err = affected(res)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func insertProduct(ctx context.Context, q DBTX, p *models.Product) (*models.Product, error) {
	if p.PublicID == "" {
		p.PublicID = NewPublicID()
	}
	if p.MoneyBackDays == 0 {
		p.MoneyBackDays = models.DefaultMoneyBackDays
	}

	row := q.QueryRowContext(ctx, `
		INSERT INTO products (product_id, name, description, slug, redirect_url, preview_url,
			money_back_days, product_image, badge_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns,
		p.PublicID, p.Name, p.Description, p.Slug, p.RedirectURL, p.PreviewURL,
		p.MoneyBackDays, p.ProductImage, p.BadgeImage,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", mapErr(err))
	}
	return created, nil
}
