// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"landingpress/internal/models"
	"landingpress/internal/theme"
)

// ThemeStore handles the per-product theme rows.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// themeAttrColumns is the comma-separated attribute column list taken from
// the field registry, followed by custom_css.
var themeAttrColumns = func() string {
	cols := make([]string, 0, len(models.ThemeFields)+1)
	for _, f := range models.ThemeFields {
		cols = append(cols, f.Column)
	}
	cols = append(cols, models.CustomCSSKey)
	return strings.Join(cols, ", ")
}()

// themeColumns lists the columns selected in theme queries.
var themeColumns = `id, product_id, ` + themeAttrColumns + `, created_at, updated_at`

// scanTheme scans a theme row in themeColumns order.
func scanTheme(s scanner) (*models.Theme, error) {
	var t models.Theme
	dest := make([]any, 0, len(models.ThemeFields)+5)
	dest = append(dest, &t.ID, &t.ProductID)
	for _, f := range models.ThemeFields {
		dest = append(dest, f.Ptr(&t))
	}
	dest = append(dest, &t.CustomCSS, &t.CreatedAt, &t.UpdatedAt)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get returns the stored theme of a product, or nil if it has none.
func (s *ThemeStore) Get(ctx context.Context, productID int64) (*models.Theme, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+themeColumns+` FROM product_themes WHERE product_id = $1`, productID)
	t, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

// Upsert writes a partial theme for a product in a single statement. When
// no row exists the default theme overlaid with the patch is inserted;
// otherwise only the patched columns are overwritten. The merged row is
// returned.
func (s *ThemeStore) Upsert(ctx context.Context, productID int64, patch models.ThemePatch) (*models.Theme, error) {
	return upsertTheme(ctx, s.db, productID, patch)
}

// Delete removes a product's theme, reporting whether a row existed.
func (s *ThemeStore) Delete(ctx context.Context, productID int64) (bool, error) {
	return deleteTheme(ctx, s.db, productID)
}

func upsertTheme(ctx context.Context, q DBTX, productID int64, patch models.ThemePatch) (*models.Theme, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	query, args := buildThemeUpsert(productID, patch)
	t, err := scanTheme(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("upsert theme: %w", mapErr(err))
	}
	return t, nil
}

func deleteTheme(ctx context.Context, q DBTX, productID int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM product_themes WHERE product_id = $1`, productID)
	if err != nil {
		return false, fmt.Errorf("delete theme: %w", err)
	}
	return affected(res)
}

// buildThemeUpsert returns the INSERT ... ON CONFLICT statement for a patch.
// Column names come only from the registry; patch values are always bound
// as parameters.
func buildThemeUpsert(productID int64, patch models.ThemePatch) (string, []any) {
	full := theme.Default()
	patch.ApplyTo(full)

	args := make([]any, 0, len(models.ThemeFields)+2)
	args = append(args, productID)
	for _, f := range models.ThemeFields {
		args = append(args, f.Get(full))
	}
	args = append(args, full.CustomCSS)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	sets := make([]string, 0, len(patch)+1)
	for _, col := range patch.Columns() {
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `INSERT INTO product_themes (product_id, ` + themeAttrColumns + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (product_id) DO UPDATE SET ` + strings.Join(sets, ", ") + `
		RETURNING ` + themeColumns
	return query, args
}
