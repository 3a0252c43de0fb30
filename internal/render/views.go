package render

import (
	"strings"

	"landingpress/internal/models"
	"landingpress/internal/theme"
)

// ThemeGroup is one fieldset of the theme editor.
type ThemeGroup struct {
	Name   string
	Fields []ThemeFieldView
}

// ThemeFieldView is one editable theme attribute.
type ThemeFieldView struct {
	Column  string
	Label   string
	CSSVar  string
	Value   string
	Default string
	IsColor bool
}

// ThemeGroups lays out the editor for t, grouped in registry order.
// Submitted values, when present, replace the stored ones so a form with
// validation errors keeps the operator's input.
func ThemeGroups(t *models.Theme, submitted map[string]string) []ThemeGroup {
	def := theme.Default()
	groups := make([]ThemeGroup, 0, len(models.ThemeGroups))
	for _, name := range models.ThemeGroups {
		g := ThemeGroup{Name: name}
		for _, f := range models.ThemeFieldsInGroup(name) {
			v := f.Get(t)
			if s, ok := submitted[f.Column]; ok {
				v = s
			}
			g.Fields = append(g.Fields, ThemeFieldView{
				Column:  f.Column,
				Label:   f.Label,
				CSSVar:  f.CSSVar,
				Value:   v,
				Default: f.Get(def),
				IsColor: strings.HasPrefix(v, "#"),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

// ImageSlot is an uploadable product image shown on the product page.
type ImageSlot struct {
	Kind  string
	Label string
	Path  string
}
