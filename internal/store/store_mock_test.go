package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landingpress/internal/models"
	"landingpress/internal/theme"
)

// newMock returns a sqlmock-backed *sql.DB using regexp query matching.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "failed to create sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func themeRows(ts ...*models.Theme) *sqlmock.Rows {
	rows := sqlmock.NewRows(strings.Split(themeColumns, ", "))
	for _, t := range ts {
		vals := []driver.Value{t.ID, t.ProductID}
		for _, f := range models.ThemeFields {
			vals = append(vals, f.Get(t))
		}
		var css driver.Value
		if t.CustomCSS != nil {
			css = *t.CustomCSS
		}
		vals = append(vals, css, t.CreatedAt, t.UpdatedAt)
		rows.AddRow(vals...)
	}
	return rows
}

var productCols = []string{
	"id", "product_id", "name", "description", "slug", "redirect_url", "preview_url",
	"money_back_days", "product_image", "badge_image", "created_at", "updated_at",
}

func productRow(p *models.Product) *sqlmock.Rows {
	return sqlmock.NewRows(productCols).AddRow(
		p.ID, p.PublicID, p.Name, p.Description, p.Slug, p.RedirectURL, p.PreviewURL,
		p.MoneyBackDays, nil, nil, p.CreatedAt, p.UpdatedAt,
	)
}

var ingredientCols = []string{"id", "product_id", "title", "description", "image", "display_order", "created_at", "updated_at"}

var pointCols = []string{"id", "product_id", "title", "description", "display_order", "created_at", "updated_at"}

func TestThemeStore_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	mock.ExpectQuery(q(`FROM product_themes WHERE product_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(themeRows())

	got, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThemeStore_GetFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	stored := theme.Default()
	stored.ID, stored.ProductID = 3, 42
	stored.PrimaryBgColor = "#112233"
	css := ".hero{}"
	stored.CustomCSS = &css

	mock.ExpectQuery(q(`FROM product_themes WHERE product_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(themeRows(stored))

	got, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "#112233", got.PrimaryBgColor)
	assert.Equal(t, "1200px", got.MaxWidth)
	require.NotNil(t, got.CustomCSS)
	assert.Equal(t, ".hero{}", *got.CustomCSS)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThemeStore_GetError(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	mock.ExpectQuery(q(`FROM product_themes`)).WillReturnError(errors.New("conn reset"))

	got, err := s.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestThemeStore_UpsertUpdatesOnlyPatchedColumns(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	merged := theme.Default()
	merged.ID, merged.ProductID = 1, 42
	merged.PrimaryBgColor = "#112233"

	mock.ExpectQuery(q(`INSERT INTO product_themes (product_id, primary_bg_color,`) + `(?s).*` +
		q(`ON CONFLICT (product_id) DO UPDATE SET primary_bg_color = EXCLUDED.primary_bg_color, updated_at = NOW()`)).
		WillReturnRows(themeRows(merged))

	got, err := s.Upsert(context.Background(), 42, models.ThemePatch{"primary_bg_color": "#112233"})
	require.NoError(t, err)
	assert.Equal(t, "#112233", got.PrimaryBgColor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThemeStore_UpsertRejectsUnknownField(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	_, err := s.Upsert(context.Background(), 42, models.ThemePatch{"background; DROP TABLE products": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownThemeField))
	require.NoError(t, mock.ExpectationsWereMet(), "no query should run for an invalid patch")
}

func TestBuildThemeUpsertArgs(t *testing.T) {
	query, args := buildThemeUpsert(42, models.ThemePatch{
		"font_family":       "Georgia, serif",
		models.CustomCSSKey: ".x{}",
	})

	require.Len(t, args, len(models.ThemeFields)+2)
	assert.Equal(t, int64(42), args[0])

	for i, f := range models.ThemeFields {
		switch f.Column {
		case "font_family":
			assert.Equal(t, "Georgia, serif", args[i+1])
		case "max_width":
			assert.Equal(t, "1200px", args[i+1], "unpatched columns insert the default")
		}
	}
	css, ok := args[len(args)-1].(*string)
	require.True(t, ok)
	require.NotNil(t, css)
	assert.Equal(t, ".x{}", *css)

	assert.Contains(t, query, "DO UPDATE SET font_family = EXCLUDED.font_family, custom_css = EXCLUDED.custom_css, updated_at = NOW()")
	assert.Contains(t, query, "$44)")
	assert.NotContains(t, query, "Georgia", "values must be bound, not inlined")
}

func TestBuildThemeUpsertEmptyPatch(t *testing.T) {
	query, args := buildThemeUpsert(7, models.ThemePatch{})
	assert.Contains(t, query, "DO UPDATE SET updated_at = NOW()")
	assert.Nil(t, args[len(args)-1].(*string), "custom_css defaults to NULL")
}

func TestThemeStore_Delete(t *testing.T) {
	db, mock := newMock(t)
	s := NewThemeStore(db)

	mock.ExpectExec(q(`DELETE FROM product_themes WHERE product_id = $1`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM product_themes WHERE product_id = $1`)).
		WithArgs(int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.Delete(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(context.Background(), 43)
	require.NoError(t, err)
	assert.False(t, removed, "deleting a missing theme is a no-op")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_FindBySlugNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectQuery(q(`FROM products WHERE slug = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(productCols))

	p, err := s.FindBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_LookupKeys(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)
	now := time.Now()
	want := &models.Product{ID: 9, PublicID: "abc123def0", Name: "Calm", Slug: "calm", MoneyBackDays: 30, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(q(`FROM products WHERE id = $1`)).WithArgs(int64(9)).WillReturnRows(productRow(want))
	mock.ExpectQuery(q(`FROM products WHERE product_id = $1`)).WithArgs("abc123def0").WillReturnRows(productRow(want))
	mock.ExpectQuery(q(`FROM products WHERE slug = $1`)).WithArgs("calm").WillReturnRows(productRow(want))

	ctx := context.Background()
	byID, err := s.FindByID(ctx, 9)
	require.NoError(t, err)
	byPublic, err := s.FindByPublicID(ctx, "abc123def0")
	require.NoError(t, err)
	bySlug, err := s.FindBySlug(ctx, "calm")
	require.NoError(t, err)

	for _, p := range []*models.Product{byID, byPublic, bySlug} {
		require.NotNil(t, p)
		assert.Equal(t, int64(9), p.ID)
		assert.Equal(t, "calm", p.Slug)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_CreateSlugConflict(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectQuery(q(`INSERT INTO products`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"})

	p, err := s.Create(context.Background(), &models.Product{Name: "Calm", Slug: "calm", RedirectURL: "https://x.test"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_CreateFillsDefaults(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)
	now := time.Now()

	in := &models.Product{Name: "Calm", Slug: "calm", RedirectURL: "https://x.test"}
	mock.ExpectQuery(q(`INSERT INTO products`)).
		WithArgs(sqlmock.AnyArg(), "Calm", "", "calm", "https://x.test", "", models.DefaultMoneyBackDays, nil, nil).
		WillReturnRows(productRow(&models.Product{ID: 1, PublicID: "0123456789", Name: "Calm", Slug: "calm", MoneyBackDays: 30, CreatedAt: now, UpdatedAt: now}))

	_, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, in.PublicID, publicIDLength)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_CreateWithRelations(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q(`INSERT INTO products`)).
		WillReturnRows(productRow(&models.Product{ID: 5, PublicID: "aaaaaaaaaa", Name: "Calm", Slug: "calm", CreatedAt: now, UpdatedAt: now}))
	th := theme.Default()
	th.ProductID = 5
	mock.ExpectQuery(q(`INSERT INTO product_themes`)).WillReturnRows(themeRows(th))
	mock.ExpectQuery(q(`INSERT INTO ingredients`)).
		WithArgs(int64(5), "A", "", nil, 1).
		WillReturnRows(sqlmock.NewRows(ingredientCols).AddRow(1, 5, "A", "", nil, 1, now, now))
	mock.ExpectQuery(q(`INSERT INTO ingredients`)).
		WithArgs(int64(5), "B", "", nil, 0).
		WillReturnRows(sqlmock.NewRows(ingredientCols).AddRow(2, 5, "B", "", nil, 0, now, now))
	mock.ExpectQuery(q(`INSERT INTO why_choose_points`)).
		WithArgs(int64(5), "Lab tested", "", 0).
		WillReturnRows(sqlmock.NewRows(pointCols).AddRow(1, 5, "Lab tested", "", 0, now, now))
	mock.ExpectCommit()

	p, err := s.CreateWithRelations(context.Background(), models.ProductBundle{
		Product:     &models.Product{Name: "Calm", Slug: "calm", RedirectURL: "https://x.test"},
		Theme:       models.ThemePatch{"max_width": "960px"},
		Ingredients: []models.Ingredient{{Title: "A", DisplayOrder: 1}, {Title: "B", DisplayOrder: 0}},
		Points:      []models.WhyChoosePoint{{Title: "Lab tested"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_CreateWithRelationsRollsBack(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q(`INSERT INTO products`)).
		WillReturnRows(productRow(&models.Product{ID: 5, PublicID: "aaaaaaaaaa", Name: "Calm", Slug: "calm", CreatedAt: now, UpdatedAt: now}))
	mock.ExpectQuery(q(`INSERT INTO ingredients`)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	p, err := s.CreateWithRelations(context.Background(), models.ProductBundle{
		Product:     &models.Product{Name: "Calm", Slug: "calm"},
		Ingredients: []models.Ingredient{{Title: "A"}},
	})
	require.Error(t, err)
	assert.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_DeleteCascades(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM product_themes WHERE product_id = $1`)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM ingredients WHERE product_id = $1`)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`DELETE FROM why_choose_points WHERE product_id = $1`)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM products WHERE id = $1`)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := s.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStore_DeleteFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM product_themes`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM ingredients`)).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	removed, err := s.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngredientStore_ListOrdersByDisplayOrder(t *testing.T) {
	db, mock := newMock(t)
	s := NewIngredientStore(db)
	now := time.Now()

	mock.ExpectQuery(q(`ORDER BY display_order ASC, id ASC`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(ingredientCols).
			AddRow(2, 1, "B", "", nil, 0, now, now).
			AddRow(1, 1, "A", "", nil, 1, now, now))

	items, err := s.ListByProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Title)
	assert.Equal(t, "A", items[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngredientStore_ReplaceForProduct(t *testing.T) {
	db, mock := newMock(t)
	s := NewIngredientStore(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM ingredients WHERE product_id = $1`)).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectQuery(q(`INSERT INTO ingredients`)).
		WithArgs(int64(3), "Zinc", "", nil, 0).
		WillReturnRows(sqlmock.NewRows(ingredientCols).AddRow(10, 3, "Zinc", "", nil, 0, now, now))
	mock.ExpectCommit()

	err := s.ReplaceForProduct(context.Background(), 3, []models.Ingredient{{Title: "Zinc"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngredientStore_ReplaceFailureKeepsOldList(t *testing.T) {
	db, mock := newMock(t)
	s := NewIngredientStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM ingredients`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectQuery(q(`INSERT INTO ingredients`)).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.ReplaceForProduct(context.Background(), 3, []models.Ingredient{{Title: "Zinc"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngredientStore_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewIngredientStore(db)

	mock.ExpectExec(q(`DELETE FROM ingredients WHERE id = $1`)).WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.Delete(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWhyChooseStore_NextDisplayOrder(t *testing.T) {
	db, mock := newMock(t)
	s := NewWhyChooseStore(db)

	mock.ExpectQuery(q(`SELECT COALESCE(MAX(display_order) + 1, 0) FROM why_choose_points`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))

	next, err := s.NextDisplayOrder(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestWhyChooseStore_Reorder(t *testing.T) {
	db, mock := newMock(t)
	s := NewWhyChooseStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(q(`UPDATE why_choose_points SET display_order = $1`)).WithArgs(0, int64(7), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE why_choose_points SET display_order = $1`)).WithArgs(1, int64(5), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Reorder(context.Background(), 2, []int64{7, 5}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(q(`SELECT COUNT(*) FROM ingredients`)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(q(`SELECT COUNT(*) FROM why_choose_points`)).WillReturnError(errors.New("boom"))

	n, err := NewIngredientStore(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = NewWhyChooseStore(db).Count(ctx)
	assert.ErrorContains(t, err, "count why-choose points")
}

func TestMapErr(t *testing.T) {
	assert.True(t, errors.Is(mapErr(&pgconn.PgError{Code: "23505"}), ErrConflict))
	other := errors.New("other")
	assert.Equal(t, other, mapErr(other))
	assert.False(t, errors.Is(mapErr(&pgconn.PgError{Code: "23503"}), ErrConflict))
}
