// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landingpress/internal/cache"
	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/theme"
)

// Public groups handlers for the visitor-facing site. Rendered landing
// pages and stylesheets are kept in the Valkey page cache; the admin
// handlers invalidate them on every write touching a product.
type Public struct {
	renderer    *render.Public
	products    ProductStore
	ingredients IngredientStore
	points      PointStore
	resolver    *theme.Resolver
	pageCache   PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil, in
// which case every request renders.
func NewPublic(renderer *render.Public, products ProductStore, ingredients IngredientStore, points PointStore, themes theme.Getter, pageCache PageCache) *Public {
	return &Public{
		renderer:    renderer,
		products:    products,
		ingredients: ingredients,
		points:      points,
		resolver:    theme.NewResolver(themes),
		pageCache:   pageCache,
	}
}

// Index lists every product with a link to its landing page.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if body, ok := p.cached(r, cache.IndexKey()); ok {
		writeHTML(w, http.StatusOK, body)
		return
	}

	products, err := p.products.List(ctx)
	if err != nil {
		slog.Error("list products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := p.renderer.Index(&buf, products); err != nil {
		slog.Error("render index failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.store(r, cache.IndexKey(), buf.Bytes())
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// LandingBySlug renders /p/{slug}.
func (p *Public) LandingBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if body, ok := p.cached(r, cache.SlugKey(slug)); ok {
		writeHTML(w, http.StatusOK, body)
		return
	}

	product, err := p.products.FindBySlug(r.Context(), slug)
	if err != nil {
		slog.Error("find product by slug failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.serveLanding(w, r, product)
}

// LandingByPublicID renders /product/{publicID}. The page is cached under
// the product's slug, so both URLs share one entry.
func (p *Public) LandingByPublicID(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	product, err := p.products.FindByPublicID(r.Context(), publicID)
	if err != nil {
		slog.Error("find product by public id failed", "error", err, "public_id", publicID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product != nil {
		if body, ok := p.cached(r, cache.SlugKey(product.Slug)); ok {
			writeHTML(w, http.StatusOK, body)
			return
		}
	}
	p.serveLanding(w, r, product)
}

func (p *Public) serveLanding(w http.ResponseWriter, r *http.Request, product *models.Product) {
	if product == nil {
		p.notFound(w)
		return
	}
	ctx := r.Context()

	ingredients, err := p.ingredients.ListByProduct(ctx, product.ID)
	if err != nil {
		slog.Error("list ingredients failed", "error", err, "product_id", product.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	points, err := p.points.ListByProduct(ctx, product.ID)
	if err != nil {
		slog.Error("list why-choose points failed", "error", err, "product_id", product.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	t, stable := p.resolver.ResolveStable(ctx, product.ID)

	var buf bytes.Buffer
	err = p.renderer.Product(&buf, render.LandingPage{
		Product:     product,
		Theme:       t,
		CSS:         theme.GenerateCSS(t),
		Ingredients: ingredients,
		Points:      points,
	})
	if err != nil {
		slog.Error("render landing page failed", "error", err, "product_id", product.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if stable {
		p.store(r, cache.SlugKey(product.Slug), buf.Bytes())
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// Buy sends the visitor to the product's external checkout.
func (p *Public) Buy(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, err := p.products.FindBySlug(r.Context(), slug)
	if err != nil {
		slog.Error("find product by slug failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil || product.RedirectURL == "" {
		p.notFound(w)
		return
	}

	slog.Info("checkout redirect", "product_id", product.ID, "slug", product.Slug)
	http.Redirect(w, r, product.RedirectURL, http.StatusFound)
}

// ThemeCSS serves the generated stylesheet of /p/{slug}.
func (p *Public) ThemeCSS(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if body, ok := p.cached(r, cache.CSSKey(slug)); ok {
		writeCSS(w, body)
		return
	}

	product, err := p.products.FindBySlug(r.Context(), slug)
	if err != nil {
		slog.Error("find product by slug failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	t, stable := p.resolver.ResolveStable(r.Context(), product.ID)
	css := []byte(theme.GenerateCSS(t))
	if stable {
		p.store(r, cache.CSSKey(slug), css)
	}
	writeCSS(w, css)
}

// NotFound renders the public 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w)
}

func (p *Public) notFound(w http.ResponseWriter) {
	var buf bytes.Buffer
	if err := p.renderer.NotFound(&buf); err != nil {
		slog.Error("render not found page failed", "error", err)
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

func (p *Public) cached(r *http.Request, key string) ([]byte, bool) {
	if p.pageCache == nil {
		return nil, false
	}
	return p.pageCache.Get(r.Context(), key)
}

func (p *Public) store(r *http.Request, key string, body []byte) {
	if p.pageCache == nil {
		return
	}
	p.pageCache.Set(r.Context(), key, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func writeCSS(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write(body)
}
