package handlers

import (
	"errors"
	"net/http"
	"slices"

	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/slug"
	"landingpress/internal/store"
	"landingpress/internal/theme"
)

// ProductsList renders all products.
func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := a.products.List(r.Context())
	if err != nil {
		a.fail(w, "list products", err)
		return
	}

	a.renderer.Page(w, r, "products_list", &render.PageData{
		Title:   "Products",
		Section: "products",
		Flashes: flashesFromQuery(r),
		Data:    map[string]any{"Products": products},
	})
}

// ProductNew renders the empty product form.
func (a *Admin) ProductNew(w http.ResponseWriter, r *http.Request) {
	form := ProductForm{MoneyBackDays: models.DefaultMoneyBackDays}
	a.productForm(w, r, http.StatusOK, nil, form, nil)
}

// ProductCreate inserts a product with its optional initial theme,
// ingredients and why-choose points in one transaction.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	form, errs := parseProductForm(r)
	if errs == nil && form.Slug == "" {
		form.Slug = slug.Generate(form.Name)
		if form.Slug == "" {
			errs = FieldErrors{"slug": "Could not derive a slug from the name. Enter one."}
		}
	}
	if errs != nil {
		a.productForm(w, r, http.StatusUnprocessableEntity, nil, form, errs)
		return
	}

	p := &models.Product{
		Name:          form.Name,
		Slug:          form.Slug,
		Description:   form.Description,
		RedirectURL:   form.RedirectURL,
		MoneyBackDays: form.MoneyBackDays,
	}
	p.PreviewURL = p.BuildPreviewURL(a.siteURL)

	bundle := models.ProductBundle{Product: p}
	if preset, ok := theme.LookupPreset(form.Preset); ok {
		bundle.Theme = preset.Patch()
	}
	for _, row := range form.Ingredients {
		bundle.Ingredients = append(bundle.Ingredients, models.Ingredient{
			Title: row.Title, Description: row.Description, DisplayOrder: row.DisplayOrder,
		})
	}
	for _, row := range form.Points {
		bundle.Points = append(bundle.Points, models.WhyChoosePoint{
			Title: row.Title, Description: row.Description, DisplayOrder: row.DisplayOrder,
		})
	}

	created, err := a.products.CreateWithRelations(r.Context(), bundle)
	if errors.Is(err, store.ErrConflict) {
		a.productForm(w, r, http.StatusUnprocessableEntity, nil, form,
			FieldErrors{"slug": "Another product already uses this slug."})
		return
	}
	if err != nil {
		a.fail(w, "create product", err, "slug", form.Slug)
		return
	}

	a.invalidate(r.Context(), created.Slug)
	redirectTo(w, r, productURL(created)+"?msg=created")
}

// ProductShow renders a product with its ingredients, points and images.
func (a *Admin) ProductShow(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ingredients, err := a.ingredients.ListByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "list ingredients", err, "product_id", p.ID)
		return
	}
	points, err := a.points.ListByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "list why-choose points", err, "product_id", p.ID)
		return
	}
	custom, err := a.resolver.IsCustom(ctx, p.ID)
	if err != nil {
		a.fail(w, "load theme", err, "product_id", p.ID)
		return
	}
	all, err := a.products.List(ctx)
	if err != nil {
		a.fail(w, "list products", err)
		return
	}
	others := slices.DeleteFunc(all, func(o models.Product) bool { return o.ID == p.ID })

	a.renderer.Page(w, r, "product_show", &render.PageData{
		Title:   p.Name,
		Section: "products",
		Flashes: flashesFromQuery(r),
		Data: map[string]any{
			"Product":       p,
			"Ingredients":   ingredients,
			"Points":        points,
			"IsCustomTheme": custom,
			"Others":        others,
			"ImageSlots": []render.ImageSlot{
				{Kind: imageProduct, Label: "Product image", Path: deref(p.ProductImage)},
				{Kind: imageBadge, Label: "Guarantee badge", Path: deref(p.BadgeImage)},
			},
		},
	})
}

// ProductEdit renders the product form filled with the stored values.
func (a *Admin) ProductEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	form := ProductForm{
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		RedirectURL:   p.RedirectURL,
		MoneyBackDays: p.MoneyBackDays,
	}
	a.productForm(w, r, http.StatusOK, p, form, nil)
}

// ProductUpdate saves the editable product fields. Cached pages under both
// the old and the new slug are dropped.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}

	form, errs := parseProductForm(r)
	if errs == nil && form.Slug == "" {
		form.Slug = slug.Generate(form.Name)
		if form.Slug == "" {
			errs = FieldErrors{"slug": "Could not derive a slug from the name. Enter one."}
		}
	}
	if errs != nil {
		a.productForm(w, r, http.StatusUnprocessableEntity, p, form, errs)
		return
	}

	oldSlug := p.Slug
	p.Name = form.Name
	p.Slug = form.Slug
	p.Description = form.Description
	p.RedirectURL = form.RedirectURL
	p.MoneyBackDays = form.MoneyBackDays
	p.PreviewURL = p.BuildPreviewURL(a.siteURL)

	updated, err := a.products.Update(r.Context(), p)
	if errors.Is(err, store.ErrConflict) {
		a.productForm(w, r, http.StatusUnprocessableEntity, p, form,
			FieldErrors{"slug": "Another product already uses this slug."})
		return
	}
	if err != nil {
		a.fail(w, "update product", err, "product_id", p.ID)
		return
	}
	if !updated {
		http.NotFound(w, r)
		return
	}

	a.invalidate(r.Context(), oldSlug, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=saved")
}

// ProductDelete removes a product together with its theme, ingredients and
// points, then deletes the images they referenced.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ingredients, err := a.ingredients.ListByProduct(ctx, p.ID)
	if err != nil {
		a.fail(w, "list ingredients", err, "product_id", p.ID)
		return
	}

	deleted, err := a.products.Delete(ctx, p.ID)
	if err != nil {
		a.fail(w, "delete product", err, "product_id", p.ID)
		return
	}
	if !deleted {
		http.NotFound(w, r)
		return
	}

	a.removeImage(ctx, p.ProductImage)
	a.removeImage(ctx, p.BadgeImage)
	for _, i := range ingredients {
		a.removeImage(ctx, i.Image)
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, "/admin/products?msg=deleted")
}

// productForm renders the create or edit form. p is nil when creating.
func (a *Admin) productForm(w http.ResponseWriter, r *http.Request, status int, p *models.Product, form ProductForm, errs FieldErrors) {
	isNew := p == nil
	title := "New product"
	action := "/admin/products"
	if !isNew {
		title = "Edit " + p.Name
		action = productURL(p)
	} else {
		form = form.withBlankRows()
	}

	a.renderer.PageStatus(w, r, status, "product_form", &render.PageData{
		Title:   title,
		Section: "products",
		Data: map[string]any{
			"IsNew":   isNew,
			"Action":  action,
			"Product": p,
			"Form":    form,
			"Errors":  errs,
			"Presets": theme.Presets(),
		},
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
