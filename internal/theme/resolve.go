package theme

import (
	"context"
	"log/slog"

	"landingpress/internal/models"
)

// Getter loads the stored theme of a product, returning (nil, nil) when
// the product has none.
type Getter interface {
	Get(ctx context.Context, productID int64) (*models.Theme, error)
}

// Resolver returns a renderable theme for every product.
type Resolver struct {
	store Getter
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store Getter) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the product's stored theme, or Default() when none is
// stored or the lookup fails. The result is never nil.
func (r *Resolver) Resolve(ctx context.Context, productID int64) *models.Theme {
	t, _ := r.ResolveStable(ctx, productID)
	return t
}

// ResolveStable is Resolve that also reports whether the result reflects
// the store. It is false when a lookup error forced the default, and output
// built from such a theme must not be cached.
func (r *Resolver) ResolveStable(ctx context.Context, productID int64) (*models.Theme, bool) {
	t, err := r.store.Get(ctx, productID)
	if err != nil {
		slog.Error("theme lookup failed, using default", "product_id", productID, "error", err)
		return r.fallback(productID), false
	}
	if t == nil {
		return r.fallback(productID), true
	}
	return t, true
}

// IsCustom reports whether the product has a stored theme row.
func (r *Resolver) IsCustom(ctx context.Context, productID int64) (bool, error) {
	t, err := r.store.Get(ctx, productID)
	if err != nil {
		return false, err
	}
	return t != nil, nil
}

func (r *Resolver) fallback(productID int64) *models.Theme {
	d := Default()
	d.ProductID = productID
	return d
}
