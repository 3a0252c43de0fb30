package theme

import (
	"strings"

	"landingpress/internal/models"
)

// GenerateCSS renders t as a :root block with one custom property per
// registry field, followed by the theme's custom CSS verbatim. A nil theme
// yields the empty string. Values are emitted as stored, empty ones included.
func GenerateCSS(t *models.Theme) string {
	if t == nil {
		return ""
	}

	var b strings.Builder
	b.Grow(64 * len(models.ThemeFields))
	b.WriteString(":root {\n")
	for _, f := range models.ThemeFields {
		b.WriteString("  ")
		b.WriteString(f.CSSVar)
		b.WriteString(": ")
		b.WriteString(f.Get(t))
		b.WriteString(";\n")
	}
	b.WriteString("}\n")

	if t.CustomCSS != nil && *t.CustomCSS != "" {
		b.WriteString(*t.CustomCSS)
	}
	return b.String()
}
