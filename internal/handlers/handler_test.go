// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: in-memory implementations of every dependency interface and a
// test environment wiring them into the three handler groups.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"landingpress/internal/cache"
	"landingpress/internal/middleware"
	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/session"
	"landingpress/internal/store"
	"landingpress/internal/theme"
)

var errBoom = errors.New("boom")

// memDB is the shared state behind the fake stores, so deleting a product
// can cascade like the real foreign keys do.
type memDB struct {
	products    map[int64]*models.Product
	themes      map[int64]*models.Theme
	ingredients map[int64]*models.Ingredient
	points      map[int64]*models.WhyChoosePoint
	nextID      int64

	failProducts bool
	failThemes   bool
}

func newMemDB() *memDB {
	return &memDB{
		products:    map[int64]*models.Product{},
		themes:      map[int64]*models.Theme{},
		ingredients: map[int64]*models.Ingredient{},
		points:      map[int64]*models.WhyChoosePoint{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

// --------------------------------------------------------------------------
// Products
// --------------------------------------------------------------------------

type fakeProducts struct{ db *memDB }

func (f fakeProducts) List(context.Context) ([]models.Product, error) {
	if f.db.failProducts {
		return nil, errBoom
	}
	var out []models.Product
	for _, p := range f.db.products {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return int(b.ID - a.ID) })
	return out, nil
}

func (f fakeProducts) Count(context.Context) (int, error) { return len(f.db.products), nil }

func (f fakeProducts) FindByID(_ context.Context, id int64) (*models.Product, error) {
	if f.db.failProducts {
		return nil, errBoom
	}
	if p, ok := f.db.products[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (f fakeProducts) FindByPublicID(_ context.Context, publicID string) (*models.Product, error) {
	for _, p := range f.db.products {
		if p.PublicID == publicID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	if f.db.failProducts {
		return nil, errBoom
	}
	for _, p := range f.db.products {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeProducts) slugTaken(slug string, except int64) bool {
	for _, p := range f.db.products {
		if p.Slug == slug && p.ID != except {
			return true
		}
	}
	return false
}

func (f fakeProducts) CreateWithRelations(_ context.Context, b models.ProductBundle) (*models.Product, error) {
	if f.db.failProducts {
		return nil, errBoom
	}
	if f.slugTaken(b.Product.Slug, 0) {
		return nil, store.ErrConflict
	}
	p := *b.Product
	p.ID = f.db.id()
	p.PublicID = "pub" + strconv.FormatInt(p.ID, 10)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.db.products[p.ID] = &p

	if len(b.Theme) > 0 {
		fakeThemes{f.db}.Upsert(context.Background(), p.ID, b.Theme)
	}
	for _, i := range b.Ingredients {
		i.ProductID = p.ID
		fakeIngredients{f.db}.Create(context.Background(), &i)
	}
	for _, pt := range b.Points {
		pt.ProductID = p.ID
		fakePoints{f.db}.Create(context.Background(), &pt)
	}
	c := p
	return &c, nil
}

// seed inserts a product directly and returns it.
func (f fakeProducts) seed(name, slug string) *models.Product {
	p, err := f.CreateWithRelations(context.Background(), models.ProductBundle{Product: &models.Product{
		Name:          name,
		Slug:          slug,
		Description:   "About " + name,
		RedirectURL:   "https://shop.example.com/" + slug,
		MoneyBackDays: 60,
	}})
	if err != nil {
		panic(err)
	}
	return p
}

func (f fakeProducts) Update(_ context.Context, p *models.Product) (bool, error) {
	if f.db.failProducts {
		return false, errBoom
	}
	if _, ok := f.db.products[p.ID]; !ok {
		return false, nil
	}
	if f.slugTaken(p.Slug, p.ID) {
		return false, store.ErrConflict
	}
	c := *p
	c.UpdatedAt = time.Now()
	f.db.products[p.ID] = &c
	return true, nil
}

func (f fakeProducts) Delete(_ context.Context, id int64) (bool, error) {
	if f.db.failProducts {
		return false, errBoom
	}
	if _, ok := f.db.products[id]; !ok {
		return false, nil
	}
	delete(f.db.products, id)
	delete(f.db.themes, id)
	for k, i := range f.db.ingredients {
		if i.ProductID == id {
			delete(f.db.ingredients, k)
		}
	}
	for k, p := range f.db.points {
		if p.ProductID == id {
			delete(f.db.points, k)
		}
	}
	return true, nil
}

// --------------------------------------------------------------------------
// Ingredients and points
// --------------------------------------------------------------------------

type fakeIngredients struct{ db *memDB }

func (f fakeIngredients) ListByProduct(_ context.Context, productID int64) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, i := range f.db.ingredients {
		if i.ProductID == productID {
			out = append(out, *i)
		}
	}
	slices.SortFunc(out, func(a, b models.Ingredient) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (f fakeIngredients) FindByID(_ context.Context, id int64) (*models.Ingredient, error) {
	if i, ok := f.db.ingredients[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (f fakeIngredients) Create(_ context.Context, i *models.Ingredient) (*models.Ingredient, error) {
	c := *i
	c.ID = f.db.id()
	f.db.ingredients[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeIngredients) Update(_ context.Context, i *models.Ingredient) (bool, error) {
	if _, ok := f.db.ingredients[i.ID]; !ok {
		return false, nil
	}
	c := *i
	f.db.ingredients[i.ID] = &c
	return true, nil
}

func (f fakeIngredients) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.db.ingredients[id]; !ok {
		return false, nil
	}
	delete(f.db.ingredients, id)
	return true, nil
}

func (f fakeIngredients) DeleteByProduct(_ context.Context, productID int64) (int64, error) {
	var n int64
	for id, i := range f.db.ingredients {
		if i.ProductID == productID {
			delete(f.db.ingredients, id)
			n++
		}
	}
	return n, nil
}

func (f fakeIngredients) ReplaceForProduct(ctx context.Context, productID int64, items []models.Ingredient) error {
	f.DeleteByProduct(ctx, productID)
	for _, i := range items {
		i.ProductID = productID
		f.Create(ctx, &i)
	}
	return nil
}

func (f fakeIngredients) Reorder(_ context.Context, productID int64, ids []int64) error {
	for pos, id := range ids {
		i, ok := f.db.ingredients[id]
		if !ok || i.ProductID != productID {
			return errBoom
		}
		i.DisplayOrder = pos
	}
	return nil
}

func (f fakeIngredients) NextDisplayOrder(ctx context.Context, productID int64) (int, error) {
	list, _ := f.ListByProduct(ctx, productID)
	if len(list) == 0 {
		return 0, nil
	}
	return list[len(list)-1].DisplayOrder + 1, nil
}

func (f fakeIngredients) Count(context.Context) (int, error) { return len(f.db.ingredients), nil }

type fakePoints struct{ db *memDB }

func (f fakePoints) ListByProduct(_ context.Context, productID int64) ([]models.WhyChoosePoint, error) {
	var out []models.WhyChoosePoint
	for _, p := range f.db.points {
		if p.ProductID == productID {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b models.WhyChoosePoint) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (f fakePoints) FindByID(_ context.Context, id int64) (*models.WhyChoosePoint, error) {
	if p, ok := f.db.points[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (f fakePoints) Create(_ context.Context, p *models.WhyChoosePoint) (*models.WhyChoosePoint, error) {
	c := *p
	c.ID = f.db.id()
	f.db.points[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakePoints) Update(_ context.Context, p *models.WhyChoosePoint) (bool, error) {
	if _, ok := f.db.points[p.ID]; !ok {
		return false, nil
	}
	c := *p
	f.db.points[p.ID] = &c
	return true, nil
}

func (f fakePoints) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.db.points[id]; !ok {
		return false, nil
	}
	delete(f.db.points, id)
	return true, nil
}

func (f fakePoints) DeleteByProduct(_ context.Context, productID int64) (int64, error) {
	var n int64
	for id, p := range f.db.points {
		if p.ProductID == productID {
			delete(f.db.points, id)
			n++
		}
	}
	return n, nil
}

func (f fakePoints) ReplaceForProduct(ctx context.Context, productID int64, items []models.WhyChoosePoint) error {
	f.DeleteByProduct(ctx, productID)
	for _, p := range items {
		p.ProductID = productID
		f.Create(ctx, &p)
	}
	return nil
}

func (f fakePoints) Reorder(_ context.Context, productID int64, ids []int64) error {
	for pos, id := range ids {
		p, ok := f.db.points[id]
		if !ok || p.ProductID != productID {
			return errBoom
		}
		p.DisplayOrder = pos
	}
	return nil
}

func (f fakePoints) NextDisplayOrder(ctx context.Context, productID int64) (int, error) {
	list, _ := f.ListByProduct(ctx, productID)
	if len(list) == 0 {
		return 0, nil
	}
	return list[len(list)-1].DisplayOrder + 1, nil
}

func (f fakePoints) Count(context.Context) (int, error) { return len(f.db.points), nil }

// --------------------------------------------------------------------------
// Themes
// --------------------------------------------------------------------------

type fakeThemes struct{ db *memDB }

func (f fakeThemes) Get(_ context.Context, productID int64) (*models.Theme, error) {
	if f.db.failThemes {
		return nil, errBoom
	}
	if t, ok := f.db.themes[productID]; ok {
		return t.Clone(), nil
	}
	return nil, nil
}

// Upsert fills a missing row from the default theme before applying the
// patch, like the SQL column defaults do.
func (f fakeThemes) Upsert(_ context.Context, productID int64, patch models.ThemePatch) (*models.Theme, error) {
	if f.db.failThemes {
		return nil, errBoom
	}
	t, ok := f.db.themes[productID]
	if !ok {
		t = theme.Default()
		t.ProductID = productID
		f.db.themes[productID] = t
	}
	patch.ApplyTo(t)
	return t.Clone(), nil
}

func (f fakeThemes) Delete(_ context.Context, productID int64) (bool, error) {
	if f.db.failThemes {
		return false, errBoom
	}
	_, ok := f.db.themes[productID]
	delete(f.db.themes, productID)
	return ok, nil
}

// --------------------------------------------------------------------------
// Operators and sessions
// --------------------------------------------------------------------------

// fakeOperators stores plain-text passwords in PasswordHash.
type fakeOperators struct {
	byID map[uuid.UUID]*models.Operator
}

func (f *fakeOperators) add(email, password string) *models.Operator {
	op := &models.Operator{ID: uuid.New(), Email: email, PasswordHash: password, DisplayName: "Operator"}
	f.byID[op.ID] = op
	return op
}

func (f *fakeOperators) FindByEmail(_ context.Context, email string) (*models.Operator, error) {
	for _, op := range f.byID {
		if strings.EqualFold(op.Email, email) {
			c := *op
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeOperators) FindByID(_ context.Context, id uuid.UUID) (*models.Operator, error) {
	if op, ok := f.byID[id]; ok {
		c := *op
		return &c, nil
	}
	return nil, nil
}

func (f *fakeOperators) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	op, ok := f.byID[id]
	if !ok {
		return errBoom
	}
	op.TOTPSecret = &secret
	return nil
}

func (f *fakeOperators) EnableTOTP(_ context.Context, id uuid.UUID) error {
	op, ok := f.byID[id]
	if !ok {
		return errBoom
	}
	op.TOTPEnabled = true
	return nil
}

func (f *fakeOperators) CheckPassword(o *models.Operator, password string) bool {
	return o.PasswordHash == password
}

type fakeSessions struct {
	created   []*session.Data
	updated   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	id := "sess-" + strconv.Itoa(len(f.created))
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/"})
	return id, nil
}

func (f *fakeSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	f.updated = append(f.updated, data)
	return nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

// --------------------------------------------------------------------------
// Page cache and images
// --------------------------------------------------------------------------

type fakeCache struct {
	entries     map[string][]byte
	invalidated []string
	sets        int
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := f.entries[key]
	return b, ok
}

func (f *fakeCache) Set(_ context.Context, key string, body []byte) {
	f.sets++
	f.entries[key] = bytes.Clone(body)
}

func (f *fakeCache) InvalidateProduct(_ context.Context, slugs ...string) {
	delete(f.entries, cache.IndexKey())
	for _, s := range slugs {
		delete(f.entries, cache.SlugKey(s))
		delete(f.entries, cache.CSSKey(s))
		f.invalidated = append(f.invalidated, s)
	}
}

type fakeImages struct {
	err     error
	stored  []string
	removed []string
}

func (f *fakeImages) Process(_ context.Context, data []byte, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := "/uploads/" + strconv.Itoa(len(f.stored)+1) + "-" + name
	f.stored = append(f.stored, path)
	return path, nil
}

func (f *fakeImages) Remove(_ context.Context, path string) {
	f.removed = append(f.removed, path)
}

// --------------------------------------------------------------------------
// Environment
// --------------------------------------------------------------------------

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB          *memDB
	Products    fakeProducts
	Ingredients fakeIngredients
	Points      fakePoints
	Themes      fakeThemes
	Operators   *fakeOperators
	Sessions    *fakeSessions
	Cache       *fakeCache
	Images      *fakeImages
	Admin       *Admin
	Auth        *Auth
	Public      *Public
}

const testSiteURL = "https://site.example.com"

// newTestEnv creates a complete test environment with all handler
// dependencies backed by memory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	pub, err := render.NewPublic()
	if err != nil {
		t.Fatalf("render.NewPublic: %v", err)
	}

	db := newMemDB()
	env := &testEnv{
		DB:          db,
		Products:    fakeProducts{db},
		Ingredients: fakeIngredients{db},
		Points:      fakePoints{db},
		Themes:      fakeThemes{db},
		Operators:   &fakeOperators{byID: map[uuid.UUID]*models.Operator{}},
		Sessions:    &fakeSessions{},
		Cache:       &fakeCache{entries: map[string][]byte{}},
		Images:      &fakeImages{},
	}
	env.Admin = NewAdmin(renderer, env.Products, env.Ingredients, env.Points, env.Themes, env.Images, env.Cache, testSiteURL)
	env.Auth = NewAuth(renderer, env.Sessions, env.Operators)
	env.Public = NewPublic(pub, env.Products, env.Ingredients, env.Points, env.Themes, env.Cache)
	return env
}

// testSession builds a session payload for the given operator.
func testSession(id uuid.UUID, email string, twoFADone bool) *session.Data {
	return &session.Data{
		OperatorID:  id,
		Email:       email,
		DisplayName: "Operator",
		TwoFADone:   twoFADone,
		CreatedAt:   time.Now(),
	}
}

func ctxWithSession(ctx context.Context, sess *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, sess)
}

// withParams attaches chi URL parameters given as name/value pairs.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// adminRequest builds a request from a signed-in, verified operator.
func adminRequest(method, target string, form url.Values, kv ...string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "ops@example.com", true)))
	return withParams(req, kv...)
}

// multipartRequest builds an upload request carrying data as the "file" part.
func multipartRequest(t *testing.T, target, filename string, data []byte, kv ...string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "ops@example.com", true)))
	return withParams(req, kv...)
}

func idStr(n int64) string { return strconv.FormatInt(n, 10) }

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	assertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("Location: got %q, want %q", loc, want)
	}
}
