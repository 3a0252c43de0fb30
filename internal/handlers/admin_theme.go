package handlers

import (
	"io"
	"net/http"
	"strings"

	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/theme"
)

// ThemeEdit renders the theme editor with the product's resolved theme.
func (a *Admin) ThemeEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	a.themeEditor(w, r, http.StatusOK, p, nil, nil)
}

// ThemeUpdate stores the fields the operator changed. Unchanged and blank
// values are left out of the patch, so a partial edit never overwrites the
// rest of a stored theme.
func (a *Admin) ThemeUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	submitted := make(map[string]string, len(models.ThemeFields)+1)
	for _, f := range models.ThemeFields {
		if vs, ok := r.PostForm[f.Column]; ok && len(vs) > 0 {
			submitted[f.Column] = strings.TrimSpace(vs[0])
		}
	}
	if vs, ok := r.PostForm[models.CustomCSSKey]; ok && len(vs) > 0 {
		submitted[models.CustomCSSKey] = strings.ReplaceAll(vs[0], "\r\n", "\n")
	}

	if errs := validateThemeValues(submitted); errs != nil {
		a.themeEditor(w, r, http.StatusUnprocessableEntity, p, submitted, errs)
		return
	}

	ctx := r.Context()
	patch := theme.Diff(a.resolver.Resolve(ctx, p.ID), submitted)
	if len(patch) == 0 {
		redirectTo(w, r, productURL(p)+"/theme?msg=unchanged")
		return
	}

	if _, err := a.themes.Upsert(ctx, p.ID, patch); err != nil {
		a.fail(w, "upsert theme", err, "product_id", p.ID)
		return
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"/theme?msg=saved")
}

// ThemePreset replaces every attribute with a preset's values. Custom CSS
// is kept.
func (a *Admin) ThemePreset(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	preset, found := theme.LookupPreset(r.FormValue("preset"))
	if !found {
		http.Error(w, "Unknown preset", http.StatusBadRequest)
		return
	}

	if _, err := a.themes.Upsert(r.Context(), p.ID, preset.Patch()); err != nil {
		a.fail(w, "apply theme preset", err, "product_id", p.ID, "preset", preset.Name)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"/theme?msg=preset")
}

// ThemeReset deletes the stored theme so the product falls back to the
// default.
func (a *Admin) ThemeReset(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}

	if _, err := a.themes.Delete(r.Context(), p.ID); err != nil {
		a.fail(w, "reset theme", err, "product_id", p.ID)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"/theme?msg=reset")
}

// ThemeCSS returns the generated stylesheet for a product.
func (a *Admin) ThemeCSS(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	css := theme.GenerateCSS(a.resolver.Resolve(r.Context(), p.ID))

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	io.WriteString(w, css)
}

func (a *Admin) themeEditor(w http.ResponseWriter, r *http.Request, status int, p *models.Product, submitted map[string]string, errs FieldErrors) {
	ctx := r.Context()
	custom, err := a.resolver.IsCustom(ctx, p.ID)
	if err != nil {
		a.fail(w, "load theme", err, "product_id", p.ID)
		return
	}
	t := a.resolver.Resolve(ctx, p.ID)

	customCSS := deref(t.CustomCSS)
	if css, ok := submitted[models.CustomCSSKey]; ok {
		customCSS = css
	}

	a.renderer.PageStatus(w, r, status, "theme_editor", &render.PageData{
		Title:   "Theme: " + p.Name,
		Section: "products",
		Flashes: flashesFromQuery(r),
		Data: map[string]any{
			"Product":   p,
			"IsCustom":  custom,
			"Groups":    render.ThemeGroups(t, submitted),
			"CustomCSS": customCSS,
			"Presets":   theme.Presets(),
			"Errors":    errs,
		},
	})
}
