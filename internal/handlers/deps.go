package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"landingpress/internal/models"
	"landingpress/internal/session"
)

// The interfaces below are the subsets of the store, session, cache and
// imaging types the handlers call. The concrete implementations live in
// their own packages; tests substitute in-memory fakes.

// ProductStore persists products and their cascades.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateWithRelations(ctx context.Context, b models.ProductBundle) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// IngredientStore persists a product's ingredients.
type IngredientStore interface {
	ListByProduct(ctx context.Context, productID int64) ([]models.Ingredient, error)
	FindByID(ctx context.Context, id int64) (*models.Ingredient, error)
	Create(ctx context.Context, i *models.Ingredient) (*models.Ingredient, error)
	Update(ctx context.Context, i *models.Ingredient) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
	ReplaceForProduct(ctx context.Context, productID int64, items []models.Ingredient) error
	Reorder(ctx context.Context, productID int64, ids []int64) error
	NextDisplayOrder(ctx context.Context, productID int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// PointStore persists a product's why-choose points.
type PointStore interface {
	ListByProduct(ctx context.Context, productID int64) ([]models.WhyChoosePoint, error)
	FindByID(ctx context.Context, id int64) (*models.WhyChoosePoint, error)
	Create(ctx context.Context, p *models.WhyChoosePoint) (*models.WhyChoosePoint, error)
	Update(ctx context.Context, p *models.WhyChoosePoint) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
	ReplaceForProduct(ctx context.Context, productID int64, items []models.WhyChoosePoint) error
	Reorder(ctx context.Context, productID int64, ids []int64) error
	NextDisplayOrder(ctx context.Context, productID int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// ThemeStore persists per-product theme rows.
type ThemeStore interface {
	Get(ctx context.Context, productID int64) (*models.Theme, error)
	Upsert(ctx context.Context, productID int64, patch models.ThemePatch) (*models.Theme, error)
	Delete(ctx context.Context, productID int64) (bool, error)
}

// OperatorStore looks up admin accounts and manages their TOTP state.
type OperatorStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Operator, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, id uuid.UUID) error
	CheckPassword(o *models.Operator, password string) bool
}

// Sessions creates and mutates admin sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// PageCache stores rendered public responses.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateProduct(ctx context.Context, slugs ...string)
}

// Images turns uploads into stored, opaque paths.
type Images interface {
	Process(ctx context.Context, data []byte, name string) (string, error)
	Remove(ctx context.Context, path string)
}
