// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"landingpress/internal/imaging"
	"landingpress/internal/models"
)

const (
	// maxUploadSize is the maximum allowed image upload size (10 MB).
	maxUploadSize = 10 << 20

	imageProduct    = "product"
	imageBadge      = "badge"
	imageIngredient = "ingredient"
)

// errBadUpload covers every client-side upload problem: a missing file,
// an oversized body or a format the image processor rejects.
var errBadUpload = errors.New("bad upload")

// readUpload pulls the "file" part out of a multipart request and runs it
// through the image processor. kind becomes the storage key prefix.
func (a *Admin) readUpload(w http.ResponseWriter, r *http.Request, kind string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", errBadUpload
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", errBadUpload
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		return "", errBadUpload
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", errBadUpload
	}

	path, err := a.images.Process(r.Context(), data, kind)
	if errors.Is(err, imaging.ErrUnsupportedType) || errors.Is(err, imaging.ErrTooLarge) {
		return "", errBadUpload
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// ProductImageUpload replaces the product or badge image.
func (a *Admin) ProductImageUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	kind := chi.URLParam(r, "kind")
	slot, ok := imageSlot(p, kind)
	if !ok {
		http.NotFound(w, r)
		return
	}

	path, err := a.readUpload(w, r, kind)
	if err != nil {
		a.uploadFailed(w, r, productURL(p), err)
		return
	}

	old := *slot
	*slot = &path
	if _, err := a.products.Update(r.Context(), p); err != nil {
		a.removeImage(r.Context(), &path)
		a.fail(w, "save product image", err, "product_id", p.ID)
		return
	}
	a.removeImage(r.Context(), old)

	a.invalidate(r.Context(), p.Slug)
	a.uploaded(w, r, productURL(p), path)
}

// ProductImageRemove clears the product or badge image.
func (a *Admin) ProductImageRemove(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	slot, ok := imageSlot(p, chi.URLParam(r, "kind"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	old := *slot
	*slot = nil
	if _, err := a.products.Update(r.Context(), p); err != nil {
		a.fail(w, "clear product image", err, "product_id", p.ID)
		return
	}
	a.removeImage(r.Context(), old)

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=image_removed")
}

// IngredientImageUpload replaces an ingredient's image.
func (a *Admin) IngredientImageUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadIngredient(w, r, p)
	if !ok {
		return
	}
	back := productURL(p) + "/ingredients/" + strconv.FormatInt(item.ID, 10) + "/edit"

	path, err := a.readUpload(w, r, imageIngredient)
	if err != nil {
		a.uploadFailed(w, r, back, err)
		return
	}

	old := item.Image
	item.Image = &path
	if _, err := a.ingredients.Update(r.Context(), item); err != nil {
		a.removeImage(r.Context(), &path)
		a.fail(w, "save ingredient image", err, "ingredient_id", item.ID)
		return
	}
	a.removeImage(r.Context(), old)

	a.invalidate(r.Context(), p.Slug)
	a.uploaded(w, r, back, path)
}

// imageSlot maps the {kind} URL parameter to the product field it edits.
func imageSlot(p *models.Product, kind string) (**string, bool) {
	switch kind {
	case imageProduct:
		return &p.ProductImage, true
	case imageBadge:
		return &p.BadgeImage, true
	}
	return nil, false
}

func (a *Admin) removeImage(ctx context.Context, path *string) {
	if path == nil || *path == "" || a.images == nil {
		return
	}
	a.images.Remove(ctx, *path)
}

func (a *Admin) uploadFailed(w http.ResponseWriter, r *http.Request, back string, err error) {
	if !errors.Is(err, errBadUpload) {
		slog.Error("image upload failed", "error", err)
		if wantsJSON(r) {
			writeMediaError(w, "Failed to store image.", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Operation failed. Please try again.", http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeMediaError(w, flashMessages["bad_image"].Message, http.StatusBadRequest)
		return
	}
	redirectTo(w, r, back+"?msg=bad_image")
}

func (a *Admin) uploaded(w http.ResponseWriter, r *http.Request, back, path string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"path": path})
		return
	}
	redirectTo(w, r, back+"?msg=uploaded")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeMediaError writes a JSON error response for upload requests.
func writeMediaError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
