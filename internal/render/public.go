package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"landingpress/internal/models"
)

// LandingPage is everything the public product template needs.
type LandingPage struct {
	Product     *models.Product
	Theme       *models.Theme
	CSS         string
	Ingredients []models.Ingredient
	Points      []models.WhyChoosePoint
}

// Public renders the visitor-facing pages.
type Public struct {
	templates map[string]*template.Template
}

var publicPages = []string{"index", "product", "not_found"}

// NewPublic parses the public templates from the embedded filesystem.
func NewPublic() (*Public, error) {
	p := &Public{templates: make(map[string]*template.Template)}
	for _, name := range publicPages {
		file := name + ".html"
		tmpl, err := template.New(file).Funcs(sharedFuncs()).ParseFS(
			templatesFS, "templates/public/layout.html", "templates/public/"+file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse public template %s: %w", file, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

type productView struct {
	LandingPage
	Style template.CSS
}

// Product renders a landing page with its generated CSS inlined in a
// <style> element.
func (p *Public) Product(w io.Writer, page LandingPage) error {
	return p.execute(w, "product", productView{LandingPage: page, Style: InlineCSS(page.CSS)})
}

// Index renders the product listing.
func (p *Public) Index(w io.Writer, products []models.Product) error {
	return p.execute(w, "index", map[string]any{"Products": products})
}

// NotFound renders the public 404 page.
func (p *Public) NotFound(w io.Writer) error {
	return p.execute(w, "not_found", nil)
}

func (p *Public) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// InlineCSS marks operator CSS as safe for a <style> element. Closing-tag
// sequences are escaped so the stylesheet cannot end the element early.
func InlineCSS(css string) template.CSS {
	return template.CSS(strings.ReplaceAll(css, "</", `<\/`))
}
