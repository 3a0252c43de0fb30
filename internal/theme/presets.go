package theme

import (
	"sort"

	"landingpress/internal/models"
)

// Preset is a named look an operator can apply in one click. Overrides are
// layered on top of Default, so a preset always describes every field.
type Preset struct {
	Name      string
	Label     string
	Overrides models.ThemePatch
}

var presets = map[string]Preset{
	"fresh": {
		Name:      "fresh",
		Label:     "Fresh Green",
		Overrides: models.ThemePatch{},
	},
	"ocean": {
		Name:  "ocean",
		Label: "Ocean Blue",
		Overrides: models.ThemePatch{
			"secondary_bg_color":        "#f1f7fb",
			"accent_bg_color":           "#dcecf7",
			"primary_text_color":        "#10263a",
			"secondary_text_color":      "#4a6275",
			"accent_text_color":         "#1769aa",
			"link_color":                "#1769aa",
			"link_hover_color":          "#0f4c7d",
			"button_primary_bg":         "#1769aa",
			"button_primary_hover_bg":   "#0f4c7d",
			"button_secondary_text":     "#1769aa",
			"button_secondary_hover_bg": "#dcecf7",
			"card_border_color":         "#d5e3ee",
			"header_text_color":         "#10263a",
			"footer_bg_color":           "#10263a",
			"footer_text_color":         "#d5e3ee",
			"gradient_start":            "#dcecf7",
		},
	},
	"midnight": {
		Name:  "midnight",
		Label: "Midnight",
		Overrides: models.ThemePatch{
			"primary_bg_color":          "#0f1115",
			"secondary_bg_color":        "#171a21",
			"accent_bg_color":           "#232833",
			"primary_text_color":        "#f2f4f8",
			"secondary_text_color":      "#a6adbb",
			"accent_text_color":         "#f5c451",
			"link_color":                "#f5c451",
			"link_hover_color":          "#ffd978",
			"button_primary_bg":         "#f5c451",
			"button_primary_text":       "#0f1115",
			"button_primary_hover_bg":   "#ffd978",
			"button_secondary_bg":       "transparent",
			"button_secondary_text":     "#f2f4f8",
			"button_secondary_hover_bg": "#232833",
			"card_bg_color":             "#171a21",
			"card_border_color":         "#2b303b",
			"card_shadow_color":         "rgba(0, 0, 0, 0.4)",
			"header_bg_color":           "#0f1115",
			"header_text_color":         "#f2f4f8",
			"footer_bg_color":           "#08090c",
			"footer_text_color":         "#a6adbb",
			"gradient_start":            "#171a21",
			"gradient_end":              "#0f1115",
			"shadow_color":              "rgba(0, 0, 0, 0.5)",
		},
	},
	"sunrise": {
		Name:  "sunrise",
		Label: "Sunrise",
		Overrides: models.ThemePatch{
			"secondary_bg_color":      "#fff7ef",
			"accent_bg_color":         "#ffe7d1",
			"accent_text_color":       "#c2410c",
			"link_color":              "#c2410c",
			"link_hover_color":        "#9a3412",
			"button_primary_bg":       "#e11d48",
			"button_primary_hover_bg": "#be123c",
			"button_secondary_text":   "#c2410c",
			"font_family":             "'Poppins', 'Helvetica Neue', Arial, sans-serif",
			"border_radius_md":        "12px",
			"border_radius_lg":        "24px",
			"gradient_start":          "#ffe7d1",
			"gradient_end":            "#fff7ef",
		},
	},
	"minimal": {
		Name:  "minimal",
		Label: "Minimal",
		Overrides: models.ThemePatch{
			"secondary_bg_color":        "#fafafa",
			"accent_bg_color":           "#f0f0f0",
			"primary_text_color":        "#111111",
			"secondary_text_color":      "#555555",
			"accent_text_color":         "#111111",
			"link_color":                "#111111",
			"link_hover_color":          "#444444",
			"button_primary_bg":         "#111111",
			"button_primary_hover_bg":   "#333333",
			"button_secondary_text":     "#111111",
			"button_secondary_hover_bg": "#f0f0f0",
			"font_family":               "Georgia, 'Times New Roman', serif",
			"border_radius_sm":          "0",
			"border_radius_md":          "0",
			"border_radius_lg":          "0",
			"border_radius_xl":          "0",
			"max_width":                 "960px",
			"gradient_start":            "#ffffff",
		},
	},
}

// Presets returns all presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Theme returns the full theme described by the preset.
func (p Preset) Theme() *models.Theme {
	t := Default()
	p.Overrides.ApplyTo(t)
	return t
}

// Patch returns the preset as a patch covering every registry field, ready
// to be upserted. Custom CSS is left out so applying a preset keeps it.
func (p Preset) Patch() models.ThemePatch {
	patch := p.Theme().Values()
	delete(patch, models.CustomCSSKey)
	return patch
}
