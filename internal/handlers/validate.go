package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"landingpress/internal/models"
	"landingpress/internal/slug"
	"landingpress/internal/theme"
)

const (
	maxThemeValueLength = 200
	maxCustomCSSLength  = 50_000
	newFormBlankRows    = 3
)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

// ProductForm is the submitted product editor.
type ProductForm struct {
	Name          string     `form:"name" validate:"required,max=200"`
	Slug          string     `form:"slug" validate:"omitempty,max=80,slug"`
	Description   string     `form:"description" validate:"max=20000"`
	RedirectURL   string     `form:"redirect_url" validate:"required,max=2000,http_url"`
	MoneyBackDays int        `form:"money_back_days" validate:"gte=0,lte=365"`
	Preset        string     `form:"preset" validate:"omitempty,preset"`
	Ingredients   []ItemForm `form:"ingredients" validate:"max=50,dive"`
	Points        []ItemForm `form:"points" validate:"max=50,dive"`
}

// ItemForm is a submitted ingredient or why-choose point.
type ItemForm struct {
	Title        string `form:"title" validate:"required,max=200"`
	Description  string `form:"description" validate:"max=5000"`
	DisplayOrder int    `form:"display_order" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	v.RegisterValidation("preset", func(fl validator.FieldLevel) bool {
		_, ok := theme.LookupPreset(fl.Field().String())
		return ok
	})
	return v
}

// validateStruct runs the tag rules on s and converts failures into
// per-field messages. Errors inside repeated rows are reported on the list
// field with the row number.
func validateStruct(s any) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": "Invalid input."}
	}

	errs := FieldErrors{}
	for _, fe := range verrs {
		key, row := fieldKey(fe.Namespace())
		if _, seen := errs[key]; seen {
			continue
		}
		msg := fieldMessage(fe)
		if row != "" {
			msg = fmt.Sprintf("Row %s, %s: %s", row, fe.Field(), msg)
		}
		errs[key] = msg
	}
	return errs
}

// fieldKey turns "ProductForm.ingredients[1].title" into ("ingredients", "2")
// and "ProductForm.name" into ("name", "").
func fieldKey(namespace string) (string, string) {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	top := parts[0]
	name, idx, ok := strings.Cut(top, "[")
	if !ok || len(parts) == 1 {
		return name, ""
	}
	n, err := strconv.Atoi(strings.TrimSuffix(idx, "]"))
	if err != nil {
		return name, ""
	}
	return name, strconv.Itoa(n + 1)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("At most %s rows are allowed.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "http_url":
		return "Must be a valid http or https URL."
	case "slug":
		return "Use lowercase letters, digits and single hyphens."
	case "preset":
		return "Unknown theme preset."
	case "excludesall":
		return "Must not contain ; { } < or >."
	default:
		return "Invalid value."
	}
}

// parseProductForm reads the product editor fields. Blank repeated rows are
// dropped. A non-numeric refund window is reported as a field error.
func parseProductForm(r *http.Request) (ProductForm, FieldErrors) {
	_ = r.ParseForm()
	f := ProductForm{
		Name:          strings.TrimSpace(r.FormValue("name")),
		Slug:          strings.TrimSpace(r.FormValue("slug")),
		Description:   strings.TrimSpace(r.FormValue("description")),
		RedirectURL:   strings.TrimSpace(r.FormValue("redirect_url")),
		MoneyBackDays: models.DefaultMoneyBackDays,
		Preset:        strings.TrimSpace(r.FormValue("preset")),
		Ingredients:   parseRows(r, "ingredient_title", "ingredient_description"),
		Points:        parseRows(r, "point_title", "point_description"),
	}

	errs := FieldErrors{}
	if raw := strings.TrimSpace(r.FormValue("money_back_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["money_back_days"] = "Must be a whole number."
		} else {
			f.MoneyBackDays = n
		}
	}

	for k, v := range validateStruct(f) {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	if len(errs) == 0 {
		return f, nil
	}
	return f, errs
}

func parseRows(r *http.Request, titleKey, descKey string) []ItemForm {
	titles := r.Form[titleKey]
	descs := r.Form[descKey]
	var rows []ItemForm
	for i := range max(len(titles), len(descs)) {
		var row ItemForm
		if i < len(titles) {
			row.Title = strings.TrimSpace(titles[i])
		}
		if i < len(descs) {
			row.Description = strings.TrimSpace(descs[i])
		}
		if row.Title == "" && row.Description == "" {
			continue
		}
		row.DisplayOrder = len(rows)
		rows = append(rows, row)
	}
	return rows
}

// withBlankRows pads the repeated rows so the new-product form always
// offers a few empty inputs.
func (f ProductForm) withBlankRows() ProductForm {
	for len(f.Ingredients) < newFormBlankRows {
		f.Ingredients = append(f.Ingredients, ItemForm{})
	}
	for len(f.Points) < newFormBlankRows {
		f.Points = append(f.Points, ItemForm{})
	}
	return f
}

// parseItemForm reads an ingredient or point form. A blank display order
// is left at fallback.
func parseItemForm(r *http.Request, fallback int) (ItemForm, FieldErrors) {
	f := ItemForm{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		DisplayOrder: fallback,
	}

	errs := FieldErrors{}
	if raw := strings.TrimSpace(r.FormValue("display_order")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["display_order"] = "Must be a whole number."
		} else {
			f.DisplayOrder = n
		}
	}
	for k, v := range validateStruct(f) {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	if len(errs) == 0 {
		return f, nil
	}
	return f, errs
}

// validateThemeValues checks submitted editor values. Attribute values
// stay free-form but may not end the declaration they are written into.
func validateThemeValues(values map[string]string) FieldErrors {
	errs := FieldErrors{}
	for _, f := range models.ThemeFields {
		v, ok := values[f.Column]
		if !ok {
			continue
		}
		rule := fmt.Sprintf("max=%d,excludesall=;{}<>", maxThemeValueLength)
		if err := validate.Var(v, rule); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				errs[f.Column] = fieldMessage(verrs[0])
			} else {
				errs[f.Column] = "Invalid value."
			}
		}
	}
	if css := values[models.CustomCSSKey]; len(css) > maxCustomCSSLength {
		errs[models.CustomCSSKey] = fmt.Sprintf("Must be at most %d characters.", maxCustomCSSLength)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
