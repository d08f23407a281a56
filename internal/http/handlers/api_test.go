package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"craftyard/internal/cache"
	"craftyard/internal/http/handlers"
	"craftyard/internal/repos"
	"craftyard/internal/services"
)

// Minimal app mirroring the production route table.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	artisans := repos.NewArtisanRepo(db)
	// bind a session directly so tests skip the bcrypt round-trip
	if err := artisans.BindSession("sid-mara", "art-mara"); err != nil {
		t.Fatal(err)
	}
	authSvc := &services.AuthService{Artisans: artisans}

	searchCache := cache.New(cache.Config{Capacity: 50, TTL: time.Minute})
	deps := handlers.NewDeps(db, searchCache, authSvc)

	app := fiber.New()
	app.Use(requestid.New())

	api := app.Group("/api/v1")
	api.Get("/products/search", deps.CatalogHandler.Search)
	api.Get("/products/:id", deps.CatalogHandler.Detail)
	api.Get("/categories", deps.CatalogHandler.Categories)
	api.Post("/login", deps.AuthHandler.Login)

	owner := handlers.RequireArtisan(authSvc)
	api.Post("/products", owner, deps.ProductHandler.Create)
	api.Patch("/products/:id", owner, deps.ProductHandler.Update)
	api.Post("/products/:id/deactivate", owner, deps.ProductHandler.Deactivate)
	api.Put("/products/:id/inventory", owner, deps.ProductHandler.SetInventory)
	api.Patch("/products/:id/quantity", owner, deps.ProductHandler.SetQuantity)
	api.Put("/products/:id/stock", owner, deps.ProductHandler.SetStock)
	api.Post("/products/:id/reduce", owner, deps.ProductHandler.Reduce)

	return app
}

type envelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		Stock     *int64 `json:"stock"`
		SoldCount int64  `json:"soldCount"`
	} `json:"data"`
	Error struct {
		Kind      string `json:"kind"`
		Message   string `json:"message"`
		Available *int64 `json:"available"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, body, sid string) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestLoginRoundTrip(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/login",
		strings.NewReader(`{"email":"mara@craftyard.test","password":"Passw0rd!"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10_000) // bcrypt comparison exceeds the default test timeout
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	var sid string
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" {
			sid = ck.Value
		}
	}
	if sid == "" {
		t.Fatal("no sid cookie issued")
	}

	req = httptest.NewRequest("POST", "/api/v1/login",
		strings.NewReader(`{"email":"mara@craftyard.test","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, 10_000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password accepted: %d", resp.StatusCode)
	}
}

func TestSearchEnvelope(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, "GET", "/api/v1/products/search?category=bakery", "", "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("want 200 success, got %d %+v", status, env)
	}
	if env.Count == 0 {
		t.Fatal("seeded bakery products missing from search")
	}

	// invalid query characters are rejected early
	status, _ = do(t, app, "GET", "/api/v1/products/search?q=%3Cscript%3E", "", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad query expected 400, got %d", status)
	}
}

func TestDetailVisibilityAndNotFound(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, "GET", "/api/v1/products/prd-sourdough", "", "")
	if status != http.StatusOK || env.Data.ID != "prd-sourdough" {
		t.Fatalf("want product detail, got %d %+v", status, env)
	}

	status, env = do(t, app, "GET", "/api/v1/products/nope", "", "")
	if status != http.StatusNotFound || env.Error.Kind != "not_found" {
		t.Fatalf("want 404 not_found, got %d %q", status, env.Error.Kind)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, "POST", "/api/v1/products/prd-sourdough/reduce", `{"quantity":1}`, "")
	if status != http.StatusUnauthorized || env.Error.Kind != "unauthorized" {
		t.Fatalf("want 401 unauthorized, got %d %q", status, env.Error.Kind)
	}
}

func TestOwnershipIndistinguishableFromMissing(t *testing.T) {
	app := newTestApp(t)

	// prd-stool belongs to art-otis; mara's session must see a plain 404
	status, env := do(t, app, "POST", "/api/v1/products/prd-stool/reduce", `{"quantity":1}`, "sid-mara")
	if status != http.StatusNotFound || env.Error.Kind != "not_found" {
		t.Fatalf("want 404 not_found for foreign product, got %d %q", status, env.Error.Kind)
	}
}

func TestReduceHappyPathAndInsufficient(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, "POST", "/api/v1/products/prd-sourdough/reduce", `{"quantity":3}`, "sid-mara")
	if status != http.StatusOK {
		t.Fatalf("want 200, got %d %+v", status, env)
	}
	if env.Data.Stock == nil || *env.Data.Stock != 9 || env.Data.SoldCount != 3 {
		t.Fatalf("want stock=9 soldCount=3, got %+v", env.Data)
	}

	status, env = do(t, app, "POST", "/api/v1/products/prd-sourdough/reduce", `{"quantity":100}`, "sid-mara")
	if status != http.StatusBadRequest || env.Error.Kind != "insufficient_inventory" {
		t.Fatalf("want 400 insufficient_inventory, got %d %q", status, env.Error.Kind)
	}
	if env.Error.Available == nil || *env.Error.Available != 9 {
		t.Fatalf("error should carry available=9, got %+v", env.Error.Available)
	}
}

func TestQuantityValidationAtBoundary(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{`{"quantity":3.5}`, `{"quantity":-1}`} {
		status, env := do(t, app, "PATCH", "/api/v1/products/prd-sourdough/quantity", body, "sid-mara")
		if status != http.StatusBadRequest || env.Error.Kind != "invalid_quantity" {
			t.Fatalf("body %s: want 400 invalid_quantity, got %d %q", body, status, env.Error.Kind)
		}
	}

	// nothing was applied
	status, env := do(t, app, "GET", "/api/v1/products/prd-sourdough", "", "")
	if status != http.StatusOK || env.Data.Stock == nil || *env.Data.Stock != 12 {
		t.Fatalf("stock changed by rejected input: %+v", env.Data)
	}
}

func TestCapacityViolationRejected(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, "PUT", "/api/v1/products/prd-cake/inventory", `{"remainingCapacity":25}`, "sid-mara")
	if status != http.StatusBadRequest || env.Error.Kind != "capacity_exceeded" {
		t.Fatalf("want 400 capacity_exceeded, got %d %q", status, env.Error.Kind)
	}
}

func TestCreateProductEndToEnd(t *testing.T) {
	app := newTestApp(t)

	body := `{"title":"Cardamom Knots","category":"bakery","price":6.5,"productType":"ready_to_ship","quantity":8}`
	status, env := do(t, app, "POST", "/api/v1/products", body, "sid-mara")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("create failed: %d %+v", status, env)
	}
	if env.Data.Status != "active" || env.Data.Stock == nil || *env.Data.Stock != 8 {
		t.Fatalf("creation seeding wrong: %+v", env.Data)
	}

	// it is immediately searchable
	status, list := do(t, app, "GET", "/api/v1/products/search?q=cardamom", "", "")
	if status != http.StatusOK || list.Count != 1 {
		t.Fatalf("new product not searchable: %d count=%d", status, list.Count)
	}
}

func TestDeactivateHidesProduct(t *testing.T) {
	app := newTestApp(t)

	status, _ := do(t, app, "POST", "/api/v1/products/prd-sourdough/deactivate", "", "sid-mara")
	if status != http.StatusOK {
		t.Fatalf("deactivate failed: %d", status)
	}
	status, _ = do(t, app, "GET", "/api/v1/products/prd-sourdough", "", "")
	if status != http.StatusNotFound {
		t.Fatalf("deactivated product still visible: %d", status)
	}
}
