package handlers

import (
	"cmp"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"landingpress/internal/models"
	"landingpress/internal/render"
)

// Path segments of the two per-product lists.
const (
	kindIngredients = "ingredients"
	kindPoints      = "points"
)

var errInvalidReorder = errors.New("invalid reorder form")

// itemPage holds what the shared ingredient/point form needs.
type itemPage struct {
	product     *models.Product
	kind        string
	itemID      int64 // zero when creating
	form        ItemForm
	errs        FieldErrors
	image       *string
	imageAction string
}

func (a *Admin) renderItemForm(w http.ResponseWriter, r *http.Request, status int, pg itemPage) {
	label := "ingredient"
	if pg.kind == kindPoints {
		label = "why-choose point"
	}
	base := productURL(pg.product) + "/" + pg.kind
	action := base
	if pg.itemID != 0 {
		action = base + "/" + strconv.FormatInt(pg.itemID, 10)
	}

	a.renderer.PageStatus(w, r, status, "item_form", &render.PageData{
		Title:   label,
		Section: "products",
		Flashes: flashesFromQuery(r),
		Data: map[string]any{
			"Product":     pg.product,
			"KindLabel":   label,
			"IsNew":       pg.itemID == 0,
			"Action":      action,
			"Form":        pg.form,
			"Errors":      pg.errs,
			"Image":       deref(pg.image),
			"ImageAction": pg.imageAction,
		},
	})
}

// --------------------------------------------------------------------------
// Ingredients
// --------------------------------------------------------------------------

// IngredientNew renders an empty ingredient form positioned last.
func (a *Admin) IngredientNew(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	next, err := a.ingredients.NextDisplayOrder(r.Context(), p.ID)
	if err != nil {
		a.fail(w, "next ingredient order", err, "product_id", p.ID)
		return
	}
	a.renderItemForm(w, r, http.StatusOK, itemPage{product: p, kind: kindIngredients, form: ItemForm{DisplayOrder: next}})
}

// IngredientCreate adds an ingredient to the product.
func (a *Admin) IngredientCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	next, err := a.ingredients.NextDisplayOrder(ctx, p.ID)
	if err != nil {
		a.fail(w, "next ingredient order", err, "product_id", p.ID)
		return
	}

	form, errs := parseItemForm(r, next)
	if errs != nil {
		a.renderItemForm(w, r, http.StatusUnprocessableEntity, itemPage{product: p, kind: kindIngredients, form: form, errs: errs})
		return
	}

	_, err = a.ingredients.Create(ctx, &models.Ingredient{
		ProductID:    p.ID,
		Title:        form.Title,
		Description:  form.Description,
		DisplayOrder: form.DisplayOrder,
	})
	if err != nil {
		a.fail(w, "create ingredient", err, "product_id", p.ID)
		return
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=created")
}

// loadIngredient resolves {itemID} and checks it belongs to p.
func (a *Admin) loadIngredient(w http.ResponseWriter, r *http.Request, p *models.Product) (*models.Ingredient, bool) {
	id, err := int64Param(r, "itemID")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	item, err := a.ingredients.FindByID(r.Context(), id)
	if err != nil {
		a.fail(w, "find ingredient", err, "ingredient_id", id)
		return nil, false
	}
	if item == nil || item.ProductID != p.ID {
		http.NotFound(w, r)
		return nil, false
	}
	return item, true
}

func ingredientPage(p *models.Product, item *models.Ingredient) itemPage {
	return itemPage{
		product: p,
		kind:    kindIngredients,
		itemID:  item.ID,
		form: ItemForm{
			Title:        item.Title,
			Description:  item.Description,
			DisplayOrder: item.DisplayOrder,
		},
		image:       item.Image,
		imageAction: productURL(p) + "/ingredients/" + strconv.FormatInt(item.ID, 10) + "/image",
	}
}

// IngredientEdit renders the form for an existing ingredient, including
// its image upload.
func (a *Admin) IngredientEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadIngredient(w, r, p)
	if !ok {
		return
	}
	a.renderItemForm(w, r, http.StatusOK, ingredientPage(p, item))
}

// IngredientUpdate saves an ingredient.
func (a *Admin) IngredientUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadIngredient(w, r, p)
	if !ok {
		return
	}

	form, errs := parseItemForm(r, item.DisplayOrder)
	if errs != nil {
		pg := ingredientPage(p, item)
		pg.form, pg.errs = form, errs
		a.renderItemForm(w, r, http.StatusUnprocessableEntity, pg)
		return
	}

	item.Title = form.Title
	item.Description = form.Description
	item.DisplayOrder = form.DisplayOrder
	updated, err := a.ingredients.Update(r.Context(), item)
	if err != nil {
		a.fail(w, "update ingredient", err, "ingredient_id", item.ID)
		return
	}
	if !updated {
		http.NotFound(w, r)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=saved")
}

// IngredientDelete removes an ingredient and its image.
func (a *Admin) IngredientDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadIngredient(w, r, p)
	if !ok {
		return
	}

	deleted, err := a.ingredients.Delete(r.Context(), item.ID)
	if err != nil {
		a.fail(w, "delete ingredient", err, "ingredient_id", item.ID)
		return
	}
	if !deleted {
		http.NotFound(w, r)
		return
	}
	a.removeImage(r.Context(), item.Image)

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=deleted")
}

// IngredientReorder applies the submitted positions to the product's
// ingredient list.
func (a *Admin) IngredientReorder(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ids, err := parseReorder(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.ingredients.Reorder(r.Context(), p.ID, ids); err != nil {
		a.fail(w, "reorder ingredients", err, "product_id", p.ID)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=reordered")
}

// --------------------------------------------------------------------------
// Why-choose points
// --------------------------------------------------------------------------

// PointNew renders an empty why-choose point form positioned last.
func (a *Admin) PointNew(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	next, err := a.points.NextDisplayOrder(r.Context(), p.ID)
	if err != nil {
		a.fail(w, "next point order", err, "product_id", p.ID)
		return
	}
	a.renderItemForm(w, r, http.StatusOK, itemPage{product: p, kind: kindPoints, form: ItemForm{DisplayOrder: next}})
}

// PointCreate adds a why-choose point to the product.
func (a *Admin) PointCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	next, err := a.points.NextDisplayOrder(ctx, p.ID)
	if err != nil {
		a.fail(w, "next point order", err, "product_id", p.ID)
		return
	}

	form, errs := parseItemForm(r, next)
	if errs != nil {
		a.renderItemForm(w, r, http.StatusUnprocessableEntity, itemPage{product: p, kind: kindPoints, form: form, errs: errs})
		return
	}

	_, err = a.points.Create(ctx, &models.WhyChoosePoint{
		ProductID:    p.ID,
		Title:        form.Title,
		Description:  form.Description,
		DisplayOrder: form.DisplayOrder,
	})
	if err != nil {
		a.fail(w, "create why-choose point", err, "product_id", p.ID)
		return
	}

	a.invalidate(ctx, p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=created")
}

func (a *Admin) loadPoint(w http.ResponseWriter, r *http.Request, p *models.Product) (*models.WhyChoosePoint, bool) {
	id, err := int64Param(r, "itemID")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	item, err := a.points.FindByID(r.Context(), id)
	if err != nil {
		a.fail(w, "find why-choose point", err, "point_id", id)
		return nil, false
	}
	if item == nil || item.ProductID != p.ID {
		http.NotFound(w, r)
		return nil, false
	}
	return item, true
}

// PointEdit renders the form for an existing why-choose point.
func (a *Admin) PointEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadPoint(w, r, p)
	if !ok {
		return
	}
	a.renderItemForm(w, r, http.StatusOK, itemPage{
		product: p,
		kind:    kindPoints,
		itemID:  item.ID,
		form:    ItemForm{Title: item.Title, Description: item.Description, DisplayOrder: item.DisplayOrder},
	})
}

// PointUpdate saves a why-choose point.
func (a *Admin) PointUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadPoint(w, r, p)
	if !ok {
		return
	}

	form, errs := parseItemForm(r, item.DisplayOrder)
	if errs != nil {
		a.renderItemForm(w, r, http.StatusUnprocessableEntity, itemPage{product: p, kind: kindPoints, itemID: item.ID, form: form, errs: errs})
		return
	}

	item.Title = form.Title
	item.Description = form.Description
	item.DisplayOrder = form.DisplayOrder
	updated, err := a.points.Update(r.Context(), item)
	if err != nil {
		a.fail(w, "update why-choose point", err, "point_id", item.ID)
		return
	}
	if !updated {
		http.NotFound(w, r)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=saved")
}

// PointDelete removes a why-choose point.
func (a *Admin) PointDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	item, ok := a.loadPoint(w, r, p)
	if !ok {
		return
	}

	deleted, err := a.points.Delete(r.Context(), item.ID)
	if err != nil {
		a.fail(w, "delete why-choose point", err, "point_id", item.ID)
		return
	}
	if !deleted {
		http.NotFound(w, r)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=deleted")
}

// PointReorder applies the submitted positions to the product's points.
func (a *Admin) PointReorder(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadProduct(w, r)
	if !ok {
		return
	}
	ids, err := parseReorder(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.points.Reorder(r.Context(), p.ID, ids); err != nil {
		a.fail(w, "reorder why-choose points", err, "product_id", p.ID)
		return
	}

	a.invalidate(r.Context(), p.Slug)
	redirectTo(w, r, productURL(p)+"?msg=reordered")
}

// parseReorder pairs the repeated id and position fields and returns the
// ids sorted by position. Ties keep their submitted order.
func parseReorder(r *http.Request) ([]int64, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	rawIDs := r.Form["id"]
	rawPos := r.Form["position"]
	if len(rawIDs) != len(rawPos) {
		return nil, errInvalidReorder
	}

	type entry struct {
		id  int64
		pos int
	}
	entries := make([]entry, 0, len(rawIDs))
	for i := range rawIDs {
		id, err := strconv.ParseInt(rawIDs[i], 10, 64)
		if err != nil {
			return nil, errInvalidReorder
		}
		pos, err := strconv.Atoi(rawPos[i])
		if err != nil {
			return nil, errInvalidReorder
		}
		entries = append(entries, entry{id: id, pos: pos})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return cmp.Compare(a.pos, b.pos) })

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}
