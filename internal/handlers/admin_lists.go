package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"landingpress/internal/models"
)

// loadSourceProduct resolves the "from" form field of a copy request. It
// rejects the target product itself.
func (a *Admin) loadSourceProduct(w http.ResponseWriter, r *http.Request, target *models.Product) (*models.Product, bool) {
	fromID, err := strconv.ParseInt(r.PostFormValue("from"), 10, 64)
	if err != nil || fromID == target.ID {
		http.Error(w, "Choose another product to copy from", http.StatusBadRequest)
		return nil, false
	}
	src, err := a.products.FindByID(r.Context(), fromID)
	if err != nil {
		a.fail(w, "find source product", err, "product_id", fromID)
		return nil, false
	}
	if src == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return src, true
}

// IngredientClear removes every ingredient of the product and their images.
func (a *Admin) IngredientClear(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	old, err := a.ingredients.ListByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "list ingredients", err, "product_id", p.ID)
		return
	}
	n, err := a.ingredients.DeleteByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "clear ingredients", err, "product_id", p.ID)
		return
	}
	for _, item := range old {
		a.removeImage(ctx, item.Image)
	}
	slog.Info("ingredients cleared", "product_id", p.ID, "count", n)

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=cleared")
}

// IngredientCopy replaces the product's ingredients with copies of another
// product's list. Images stay with their original rows.
func (a *Admin) IngredientCopy(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	src, ok := a.loadSourceProduct(w, r, p)
	if !ok {
		return
	}
	ctx := r.Context()

	old, err := a.ingredients.ListByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "list ingredients", err, "product_id", p.ID)
		return
	}
	from, err := a.ingredients.ListByProduct(ctx, src.ID)
	if err != nil {
		a.fail(w, "list ingredients", err, "product_id", src.ID)
		return
	}
	items := make([]models.Ingredient, len(from))
	for i, item := range from {
		items[i] = models.Ingredient{Title: item.Title, Description: item.Description, DisplayOrder: i}
	}
	if err := a.ingredients.ReplaceForProduct(ctx, p.ID, items); err != nil {
		a.fail(w, "copy ingredients", err, "product_id", p.ID, "from", src.ID)
		return
	}
	for _, item := range old {
		a.removeImage(ctx, item.Image)
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=copied")
}

// PointClear removes every why-choose point of the product.
func (a *Admin) PointClear(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	n, err := a.points.DeleteByProduct(r.Context(), p.ID)
	if err != nil {
		a.fail(w, "clear why-choose points", err, "product_id", p.ID)
		return
	}
	slog.Info("why-choose points cleared", "product_id", p.ID, "count", n)

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=cleared")
}

// PointCopy replaces the product's why-choose points with copies of
// another product's list.
func (a *Admin) PointCopy(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	src, ok := a.loadSourceProduct(w, r, p)
	if !ok {
		return
	}
	ctx := r.Context()

	from, err := a.points.ListByProduct(ctx, src.ID)
	if err != nil {
		a.fail(w, "list why-choose points", err, "product_id", src.ID)
		return
	}
	items := make([]models.WhyChoosePoint, len(from))
	for i, pt := range from {
		items[i] = models.WhyChoosePoint{Title: pt.Title, Description: pt.Description, DisplayOrder: i}
	}
	if err := a.points.ReplaceForProduct(ctx, p.ID, items); err != nil {
		a.fail(w, "copy why-choose points", err, "product_id", p.ID, "from", src.ID)
		return
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=copied")
}
