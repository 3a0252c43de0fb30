// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the small amount of behaviour that belongs to them.
package models

import (
	"strings"
	"time"
)

// DefaultMoneyBackDays is the refund window used when an operator leaves it blank.
const DefaultMoneyBackDays = 30

// Product is one supplement with its own landing page. It owns its
// ingredients, why-choose points and at most one theme.
type Product struct {
	ID            int64     `json:"id"`
	PublicID      string    `json:"product_id"` // short id shown in public URLs
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Slug          string    `json:"slug"`
	RedirectURL   string    `json:"redirect_url"` // checkout destination
	PreviewURL    string    `json:"preview_url"`
	MoneyBackDays int       `json:"money_back_days"`
	ProductImage  *string   `json:"product_image,omitempty"`
	BadgeImage    *string   `json:"badge_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LandingPath returns the site-relative path of the product's landing page.
func (p *Product) LandingPath() string {
	return "/p/" + p.Slug
}

// BuildPreviewURL joins the site base URL with the landing path.
func (p *Product) BuildPreviewURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + p.LandingPath()
}

// Ingredient is a single component listed on a product's landing page.
type Ingredient struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        *string   `json:"image,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WhyChoosePoint is one "why choose us" marketing bullet for a product.
type WhyChoosePoint struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductBundle is a product together with the related rows created
// alongside it in one operation.
type ProductBundle struct {
	Product     *Product
	Theme       ThemePatch
	Ingredients []Ingredient
	Points      []WhyChoosePoint
}
