package theme

import (
	"strings"

	"landingpress/internal/models"
)

// Diff builds a patch from submitted editor values, keeping only registry
// fields whose trimmed value is non-empty and differs from base. Custom CSS
// is included whenever it changed, so clearing it is possible.
func Diff(base *models.Theme, submitted map[string]string) models.ThemePatch {
	patch := models.ThemePatch{}
	for _, f := range models.ThemeFields {
		v, ok := submitted[f.Column]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" || v == f.Get(base) {
			continue
		}
		patch[f.Column] = v
	}

	if css, ok := submitted[models.CustomCSSKey]; ok {
		var current string
		if base.CustomCSS != nil {
			current = *base.CustomCSS
		}
		if css != current {
			patch[models.CustomCSSKey] = css
		}
	}
	return patch
}
