package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landingpress/internal/models"
)

// WhyChooseStore handles the "why choose us" points of product pages.
type WhyChooseStore struct {
	db *sql.DB
}

// NewWhyChooseStore creates a new WhyChooseStore.
func NewWhyChooseStore(db *sql.DB) *WhyChooseStore {
	return &WhyChooseStore{db: db}
}

const pointColumns = `id, product_id, title, description, display_order, created_at, updated_at`

func scanPoint(s scanner) (*models.WhyChoosePoint, error) {
	var p models.WhyChoosePoint
	err := s.Scan(&p.ID, &p.ProductID, &p.Title, &p.Description, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByProduct returns a product's points by display order.
func (s *WhyChooseStore) ListByProduct(ctx context.Context, productID int64) ([]models.WhyChoosePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pointColumns+`
		FROM why_choose_points
		WHERE product_id = $1
		ORDER BY display_order ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list why-choose points: %w", err)
	}
	defer rows.Close()

	var items []models.WhyChoosePoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan why-choose point: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a point. Returns nil if not found.
func (s *WhyChooseStore) FindByID(ctx context.Context, id int64) (*models.WhyChoosePoint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pointColumns+` FROM why_choose_points WHERE id = $1`, id)
	p, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find why-choose point: %w", err)
	}
	return p, nil
}

// Create inserts a point for its ProductID.
func (s *WhyChooseStore) Create(ctx context.Context, p *models.WhyChoosePoint) (*models.WhyChoosePoint, error) {
	return insertPoint(ctx, s.db, p)
}

// Update saves a point's editable fields. Reports false if it does not exist.
func (s *WhyChooseStore) Update(ctx context.Context, p *models.WhyChoosePoint) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE why_choose_points
		SET title = $1, description = $2, display_order = $3, updated_at = NOW()
		WHERE id = $4
	`, p.Title, p.Description, p.DisplayOrder, p.ID)
	if err != nil {
		return false, fmt.Errorf("update why-choose point: %w", err)
	}
	return affected(res)
}

// Delete removes a point. Reports false if it did not exist.
func (s *WhyChooseStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM why_choose_points WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete why-choose point: %w", err)
	}
	return affected(res)
}

// DeleteByProduct removes all of a product's points and returns how many went.
func (s *WhyChooseStore) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM why_choose_points WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete why-choose points by product: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceForProduct swaps a product's whole point list in one transaction.
func (s *WhyChooseStore) ReplaceForProduct(ctx context.Context, productID int64, items []models.WhyChoosePoint) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM why_choose_points WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("clear why-choose points: %w", err)
		}
		for i := range items {
			items[i].ProductID = productID
			if _, err := insertPoint(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reorder assigns display orders 0..n-1 following ids.
func (s *WhyChooseStore) Reorder(ctx context.Context, productID int64, ids []int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for pos, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE why_choose_points SET display_order = $1, updated_at = NOW()
				WHERE id = $2 AND product_id = $3
			`, pos, id, productID); err != nil {
				return fmt.Errorf("reorder why-choose point %d: %w", id, err)
			}
		}
		return nil
	})
}

// Count returns the number of why-choose points across all products.
func (s *WhyChooseStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM why_choose_points`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count why-choose points: %w", err)
	}
	return n, nil
}

// NextDisplayOrder returns the display order that places a new point last.
func (s *WhyChooseStore) NextDisplayOrder(ctx context.Context, productID int64) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM why_choose_points WHERE product_id = $1`, productID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next why-choose order: %w", err)
	}
	return next, nil
}

func insertPoint(ctx context.Context, q DBTX, p *models.WhyChoosePoint) (*models.WhyChoosePoint, error) {
	row := q.QueryRowContext(ctx, `
		INSERT INTO why_choose_points (product_id, title, description, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING `+pointColumns,
		p.ProductID, p.Title, p.Description, p.DisplayOrder,
	)
	created, err := scanPoint(row)
	if err != nil {
		return nil, fmt.Errorf("create why-choose point %q: %w", p.Title, mapErr(err))
	}
	return created, nil
}
