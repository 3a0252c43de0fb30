package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landingpress/internal/models"
)

// IngredientStore handles the ingredients listed on product pages.
type IngredientStore struct {
	db *sql.DB
}

// NewIngredientStore creates a new IngredientStore.
func NewIngredientStore(db *sql.DB) *IngredientStore {
	return &IngredientStore{db: db}
}

const ingredientColumns = `id, product_id, title, description, image, display_order, created_at, updated_at`

func scanIngredient(s scanner) (*models.Ingredient, error) {
	var i models.Ingredient
	err := s.Scan(&i.ID, &i.ProductID, &i.Title, &i.Description, &i.Image, &i.DisplayOrder, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListByProduct returns a product's ingredients by display order. Ties
// keep insertion order.
func (s *IngredientStore) ListByProduct(ctx context.Context, productID int64) ([]models.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE product_id = $1
		ORDER BY display_order ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var items []models.Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// FindByID retrieves an ingredient. Returns nil if not found.
func (s *IngredientStore) FindByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)
	i, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ingredient: %w", err)
	}
	return i, nil
}

// Create inserts an ingredient for its ProductID.
func (s *IngredientStore) Create(ctx context.Context, i *models.Ingredient) (*models.Ingredient, error) {
	return insertIngredient(ctx, s.db, i)
}

// Update saves an ingredient's editable fields. Reports false if it does not exist.
func (s *IngredientStore) Update(ctx context.Context, i *models.Ingredient) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET title = $1, description = $2, image = $3, display_order = $4, updated_at = NOW()
		WHERE id = $5
	`, i.Title, i.Description, i.Image, i.DisplayOrder, i.ID)
	if err != nil {
		return false, fmt.Errorf("update ingredient: %w", err)
	}
	return affected(res)
}

// Delete removes an ingredient. Reports false if it did not exist.
func (s *IngredientStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete ingredient: %w", err)
	}
	return affected(res)
}

// DeleteByProduct removes all of a product's ingredients and returns how many went.
func (s *IngredientStore) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete ingredients by product: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceForProduct swaps a product's whole ingredient list in one
// transaction.
func (s *IngredientStore) ReplaceForProduct(ctx context.Context, productID int64, items []models.Ingredient) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		for i := range items {
			items[i].ProductID = productID
			if _, err := insertIngredient(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reorder assigns display orders 0..n-1 following ids. Ids belonging to
// another product are ignored.
func (s *IngredientStore) Reorder(ctx context.Context, productID int64, ids []int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for pos, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE ingredients SET display_order = $1, updated_at = NOW()
				WHERE id = $2 AND product_id = $3
			`, pos, id, productID); err != nil {
				return fmt.Errorf("reorder ingredient %d: %w", id, err)
			}
		}
		return nil
	})
}

// Count returns the number of ingredients across all products.
func (s *IngredientStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	return n, nil
}

// NextDisplayOrder returns the display order that places a new ingredient last.
func (s *IngredientStore) NextDisplayOrder(ctx context.Context, productID int64) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM ingredients WHERE product_id = $1`, productID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next ingredient order: %w", err)
	}
	return next, nil
}

func insertIngredient(ctx context.Context, q DBTX, i *models.Ingredient) (*models.Ingredient, error) {
	row := q.QueryRowContext(ctx, `
		INSERT INTO ingredients (product_id, title, description, image, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+ingredientColumns,
		i.ProductID, i.Title, i.Description, i.Image, i.DisplayOrder,
	)
	created, err := scanIngredient(row)
	if err != nil {
		return nil, fmt.Errorf("create ingredient %q: %w", i.Title, mapErr(err))
	}
	return created, nil
}
