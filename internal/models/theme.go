// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownThemeField is returned when a patch names a column that is not
// part of the theme field registry.
var ErrUnknownThemeField = errors.New("unknown theme field")

// CustomCSSKey is the patch key for the free-form CSS block. It is kept out
// of ThemeFields because it is nullable and never becomes a custom property.
const CustomCSSKey = "custom_css"

// Theme is the presentational attribute set of one product's landing page.
// Every attribute is a plain string; none is validated as CSS.
type Theme struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`

	PrimaryBgColor   string `json:"primary_bg_color"`
	SecondaryBgColor string `json:"secondary_bg_color"`
	AccentBgColor    string `json:"accent_bg_color"`

	PrimaryTextColor   string `json:"primary_text_color"`
	SecondaryTextColor string `json:"secondary_text_color"`
	AccentTextColor    string `json:"accent_text_color"`
	LinkColor          string `json:"link_color"`
	LinkHoverColor     string `json:"link_hover_color"`

	ButtonPrimaryBg        string `json:"button_primary_bg"`
	ButtonPrimaryText      string `json:"button_primary_text"`
	ButtonPrimaryHoverBg   string `json:"button_primary_hover_bg"`
	ButtonSecondaryBg      string `json:"button_secondary_bg"`
	ButtonSecondaryText    string `json:"button_secondary_text"`
	ButtonSecondaryHoverBg string `json:"button_secondary_hover_bg"`

	CardBgColor     string `json:"card_bg_color"`
	CardBorderColor string `json:"card_border_color"`
	CardShadowColor string `json:"card_shadow_color"`

	HeaderBgColor   string `json:"header_bg_color"`
	HeaderTextColor string `json:"header_text_color"`
	FooterBgColor   string `json:"footer_bg_color"`
	FooterTextColor string `json:"footer_text_color"`

	FontFamily     string `json:"font_family"`
	H1FontSize     string `json:"h1_font_size"`
	H1FontWeight   string `json:"h1_font_weight"`
	H2FontSize     string `json:"h2_font_size"`
	H2FontWeight   string `json:"h2_font_weight"`
	H3FontSize     string `json:"h3_font_size"`
	H3FontWeight   string `json:"h3_font_weight"`
	BodyFontSize   string `json:"body_font_size"`
	BodyLineHeight string `json:"body_line_height"`

	SectionPadding string `json:"section_padding"`
	CardPadding    string `json:"card_padding"`
	ButtonPadding  string `json:"button_padding"`

	BorderRadiusSm string `json:"border_radius_sm"`
	BorderRadiusMd string `json:"border_radius_md"`
	BorderRadiusLg string `json:"border_radius_lg"`
	BorderRadiusXl string `json:"border_radius_xl"`

	MaxWidth         string `json:"max_width"`
	ContainerPadding string `json:"container_padding"`

	GradientStart string `json:"gradient_start"`
	GradientEnd   string `json:"gradient_end"`
	ShadowColor   string `json:"shadow_color"`

	CustomCSS *string `json:"custom_css,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThemeField describes one theme attribute: where it is stored, which
// custom property it becomes, and how the admin editor labels it.
type ThemeField struct {
	Column string
	CSSVar string
	Label  string
	Group  string
	Ptr    func(*Theme) *string
}

// Get returns the field's value on t.
func (f ThemeField) Get(t *Theme) string { return *f.Ptr(t) }

// Set assigns v to the field on t.
func (f ThemeField) Set(t *Theme, v string) { *f.Ptr(t) = v }

// Theme field groups, in editor order.
const (
	GroupBackground = "Background"
	GroupText       = "Text"
	GroupButtons    = "Buttons"
	GroupCards      = "Cards"
	GroupHeader     = "Header & Footer"
	GroupTypography = "Typography"
	GroupSpacing    = "Spacing"
	GroupRadius     = "Border Radius"
	GroupLayout     = "Layout"
	GroupEffects    = "Effects"
)

// ThemeGroups lists the groups in the order the editor renders them.
var ThemeGroups = []string{
	GroupBackground, GroupText, GroupButtons, GroupCards, GroupHeader,
	GroupTypography, GroupSpacing, GroupRadius, GroupLayout, GroupEffects,
}

// ThemeFields is the complete, ordered registry of theme attributes. SQL
// column lists and the generated :root block are both derived from it.
var ThemeFields = []ThemeField{
	{"primary_bg_color", "--bg-primary", "Primary background", GroupBackground, func(t *Theme) *string { return &t.PrimaryBgColor }},
	{"secondary_bg_color", "--bg-secondary", "Secondary background", GroupBackground, func(t *Theme) *string { return &t.SecondaryBgColor }},
	{"accent_bg_color", "--bg-accent", "Accent background", GroupBackground, func(t *Theme) *string { return &t.AccentBgColor }},

	{"primary_text_color", "--text-primary", "Primary text", GroupText, func(t *Theme) *string { return &t.PrimaryTextColor }},
	{"secondary_text_color", "--text-secondary", "Secondary text", GroupText, func(t *Theme) *string { return &t.SecondaryTextColor }},
	{"accent_text_color", "--text-accent", "Accent text", GroupText, func(t *Theme) *string { return &t.AccentTextColor }},
	{"link_color", "--link", "Link", GroupText, func(t *Theme) *string { return &t.LinkColor }},
	{"link_hover_color", "--link-hover", "Link hover", GroupText, func(t *Theme) *string { return &t.LinkHoverColor }},

	{"button_primary_bg", "--btn-primary-bg", "Primary button background", GroupButtons, func(t *Theme) *string { return &t.ButtonPrimaryBg }},
	{"button_primary_text", "--btn-primary-text", "Primary button text", GroupButtons, func(t *Theme) *string { return &t.ButtonPrimaryText }},
	{"button_primary_hover_bg", "--btn-primary-hover-bg", "Primary button hover", GroupButtons, func(t *Theme) *string { return &t.ButtonPrimaryHoverBg }},
	{"button_secondary_bg", "--btn-secondary-bg", "Secondary button background", GroupButtons, func(t *Theme) *string { return &t.ButtonSecondaryBg }},
	{"button_secondary_text", "--btn-secondary-text", "Secondary button text", GroupButtons, func(t *Theme) *string { return &t.ButtonSecondaryText }},
	{"button_secondary_hover_bg", "--btn-secondary-hover-bg", "Secondary button hover", GroupButtons, func(t *Theme) *string { return &t.ButtonSecondaryHoverBg }},

	{"card_bg_color", "--card-bg", "Card background", GroupCards, func(t *Theme) *string { return &t.CardBgColor }},
	{"card_border_color", "--card-border", "Card border", GroupCards, func(t *Theme) *string { return &t.CardBorderColor }},
	{"card_shadow_color", "--card-shadow", "Card shadow", GroupCards, func(t *Theme) *string { return &t.CardShadowColor }},

	{"header_bg_color", "--header-bg", "Header background", GroupHeader, func(t *Theme) *string { return &t.HeaderBgColor }},
	{"header_text_color", "--header-text", "Header text", GroupHeader, func(t *Theme) *string { return &t.HeaderTextColor }},
	{"footer_bg_color", "--footer-bg", "Footer background", GroupHeader, func(t *Theme) *string { return &t.FooterBgColor }},
	{"footer_text_color", "--footer-text", "Footer text", GroupHeader, func(t *Theme) *string { return &t.FooterTextColor }},

	{"font_family", "--font-family", "Font family", GroupTypography, func(t *Theme) *string { return &t.FontFamily }},
	{"h1_font_size", "--h1-size", "H1 size", GroupTypography, func(t *Theme) *string { return &t.H1FontSize }},
	{"h1_font_weight", "--h1-weight", "H1 weight", GroupTypography, func(t *Theme) *string { return &t.H1FontWeight }},
	{"h2_font_size", "--h2-size", "H2 size", GroupTypography, func(t *Theme) *string { return &t.H2FontSize }},
	{"h2_font_weight", "--h2-weight", "H2 weight", GroupTypography, func(t *Theme) *string { return &t.H2FontWeight }},
	{"h3_font_size", "--h3-size", "H3 size", GroupTypography, func(t *Theme) *string { return &t.H3FontSize }},
	{"h3_font_weight", "--h3-weight", "H3 weight", GroupTypography, func(t *Theme) *string { return &t.H3FontWeight }},
	{"body_font_size", "--body-size", "Body size", GroupTypography, func(t *Theme) *string { return &t.BodyFontSize }},
	{"body_line_height", "--body-line-height", "Body line height", GroupTypography, func(t *Theme) *string { return &t.BodyLineHeight }},

	{"section_padding", "--section-padding", "Section padding", GroupSpacing, func(t *Theme) *string { return &t.SectionPadding }},
	{"card_padding", "--card-padding", "Card padding", GroupSpacing, func(t *Theme) *string { return &t.CardPadding }},
	{"button_padding", "--button-padding", "Button padding", GroupSpacing, func(t *Theme) *string { return &t.ButtonPadding }},

	{"border_radius_sm", "--radius-sm", "Radius SM", GroupRadius, func(t *Theme) *string { return &t.BorderRadiusSm }},
	{"border_radius_md", "--radius-md", "Radius MD", GroupRadius, func(t *Theme) *string { return &t.BorderRadiusMd }},
	{"border_radius_lg", "--radius-lg", "Radius LG", GroupRadius, func(t *Theme) *string { return &t.BorderRadiusLg }},
	{"border_radius_xl", "--radius-xl", "Radius XL", GroupRadius, func(t *Theme) *string { return &t.BorderRadiusXl }},

	{"max_width", "--max-width", "Max width", GroupLayout, func(t *Theme) *string { return &t.MaxWidth }},
	{"container_padding", "--container-padding", "Container padding", GroupLayout, func(t *Theme) *string { return &t.ContainerPadding }},

	{"gradient_start", "--gradient-start", "Gradient start", GroupEffects, func(t *Theme) *string { return &t.GradientStart }},
	{"gradient_end", "--gradient-end", "Gradient end", GroupEffects, func(t *Theme) *string { return &t.GradientEnd }},
	{"shadow_color", "--shadow-color", "Shadow color", GroupEffects, func(t *Theme) *string { return &t.ShadowColor }},
}

var themeFieldIndex = func() map[string]int {
	m := make(map[string]int, len(ThemeFields))
	for i, f := range ThemeFields {
		m[f.Column] = i
	}
	return m
}()

// LookupThemeField returns the registry entry for a column name.
func LookupThemeField(column string) (ThemeField, bool) {
	i, ok := themeFieldIndex[column]
	if !ok {
		return ThemeField{}, false
	}
	return ThemeFields[i], true
}

// ThemeFieldsInGroup returns the registry entries of one editor group.
func ThemeFieldsInGroup(group string) []ThemeField {
	var out []ThemeField
	for _, f := range ThemeFields {
		if f.Group == group {
			out = append(out, f)
		}
	}
	return out
}

// ThemePatch is a partial theme update keyed by column name. The special
// key CustomCSSKey sets the free-form CSS; an empty value clears it.
type ThemePatch map[string]string

// Validate reports the first key that is neither a registry column nor
// CustomCSSKey.
func (p ThemePatch) Validate() error {
	for k := range p {
		if k == CustomCSSKey {
			continue
		}
		if _, ok := themeFieldIndex[k]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownThemeField, k)
		}
	}
	return nil
}

// Columns returns the patched registry columns in registry order, followed
// by CustomCSSKey when present. The order is stable so generated SQL is too.
func (p ThemePatch) Columns() []string {
	cols := make([]string, 0, len(p))
	for _, f := range ThemeFields {
		if _, ok := p[f.Column]; ok {
			cols = append(cols, f.Column)
		}
	}
	if _, ok := p[CustomCSSKey]; ok {
		cols = append(cols, CustomCSSKey)
	}
	return cols
}

// ApplyTo overlays the patch onto t. Unknown keys are ignored; call
// Validate first when the patch comes from user input.
func (p ThemePatch) ApplyTo(t *Theme) {
	for k, v := range p {
		if k == CustomCSSKey {
			if v == "" {
				t.CustomCSS = nil
			} else {
				css := v
				t.CustomCSS = &css
			}
			continue
		}
		if f, ok := LookupThemeField(k); ok {
			f.Set(t, v)
		}
	}
}

// Clone returns a deep copy of t.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	c := *t
	if t.CustomCSS != nil {
		css := *t.CustomCSS
		c.CustomCSS = &css
	}
	return &c
}

// Values returns every registry field of t keyed by column, plus the
// custom CSS when set. Used to turn a full theme into a patch.
func (t *Theme) Values() ThemePatch {
	p := make(ThemePatch, len(ThemeFields)+1)
	for _, f := range ThemeFields {
		p[f.Column] = f.Get(t)
	}
	if t.CustomCSS != nil {
		p[CustomCSSKey] = *t.CustomCSS
	}
	return p
}
