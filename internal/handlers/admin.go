// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for LandingPress.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/theme"
)

// Admin groups all admin dashboard HTTP handlers and their dependencies.
type Admin struct {
	renderer    *render.Renderer
	products    ProductStore
	ingredients IngredientStore
	points      PointStore
	themes      ThemeStore
	resolver    *theme.Resolver
	images      Images
	pageCache   PageCache
	siteURL     string
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// pageCache may be nil, in which case nothing is invalidated.
func NewAdmin(renderer *render.Renderer, products ProductStore, ingredients IngredientStore, points PointStore, themes ThemeStore, images Images, pageCache PageCache, siteURL string) *Admin {
	return &Admin{
		renderer:    renderer,
		products:    products,
		ingredients: ingredients,
		points:      points,
		themes:      themes,
		resolver:    theme.NewResolver(themes),
		images:      images,
		pageCache:   pageCache,
		siteURL:     siteURL,
	}
}

// Dashboard renders the admin dashboard with content counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productCount, err := a.products.Count(ctx)
	if err != nil {
		slog.Error("count products failed", "error", err)
	}
	ingredientCount, err := a.ingredients.Count(ctx)
	if err != nil {
		slog.Error("count ingredients failed", "error", err)
	}
	pointCount, err := a.points.Count(ctx)
	if err != nil {
		slog.Error("count why-choose points failed", "error", err)
	}

	recent, err := a.products.List(ctx)
	if err != nil {
		slog.Error("list products failed", "error", err)
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Flashes: flashesFromQuery(r),
		Data: map[string]any{
			"ProductCount":    productCount,
			"IngredientCount": ingredientCount,
			"PointCount":      pointCount,
			"Recent":          recent,
		},
	})
}

// loadProduct resolves the {id} URL parameter. It writes the 404 or 500
// response itself and returns false when the handler should stop.
func (a *Admin) loadProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, err := int64Param(r, "id")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		a.fail(w, "find product", err, "product_id", id)
		return nil, false
	}
	if p == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return p, true
}

// invalidate drops cached public pages for the given slugs and the index.
func (a *Admin) invalidate(ctx context.Context, slugs ...string) {
	if a.pageCache == nil {
		return
	}
	a.pageCache.InvalidateProduct(ctx, slugs...)
}

// fail logs a store failure and answers with a generic message.
func (a *Admin) fail(w http.ResponseWriter, op string, err error, args ...any) {
	slog.Error(op+" failed", append([]any{"error", err}, args...)...)
	http.Error(w, "Operation failed. Please try again.", http.StatusInternalServerError)
}

// redirectTo sends the browser to url, using HX-Redirect for HTMX requests.
func redirectTo(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func int64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func productURL(p *models.Product) string {
	return "/admin/products/" + strconv.FormatInt(p.ID, 10)
}

// flashMessages maps the ?msg= codes set by redirects to notifications.
var flashMessages = map[string]render.Flash{
	"created":       {Type: "success", Message: "Created."},
	"saved":         {Type: "success", Message: "Changes saved."},
	"deleted":       {Type: "success", Message: "Deleted."},
	"reordered":     {Type: "success", Message: "Order saved."},
	"cleared":       {Type: "success", Message: "List cleared."},
	"copied":        {Type: "success", Message: "List copied."},
	"uploaded":      {Type: "success", Message: "Image uploaded."},
	"image_removed": {Type: "success", Message: "Image removed."},
	"preset":        {Type: "success", Message: "Preset applied."},
	"reset":         {Type: "success", Message: "Theme reset to the default."},
	"unchanged":     {Type: "info", Message: "Nothing changed."},
	"bad_image":     {Type: "error", Message: "Upload a JPEG, PNG, GIF or WebP image up to 10 MB."},
}

func flashesFromQuery(r *http.Request) []render.Flash {
	if f, ok := flashMessages[r.URL.Query().Get("msg")]; ok {
		return []render.Flash{f}
	}
	return nil
}
