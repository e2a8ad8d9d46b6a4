package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"wanderlust/internal/config"
	"wanderlust/internal/http/handlers"
	"wanderlust/internal/metrics"
	"wanderlust/internal/repos"
	"wanderlust/internal/sessions"
)

type testEnv struct {
	app      *fiber.App
	db       *sqlx.DB
	listings *repos.ListingRepo
	reviews  *repos.ReviewRepo
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, closeStore, err := sessions.NewStore("", false)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	t.Cleanup(func() { _ = closeStore() })

	cfg := config.Config{
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
		SessionSecret: "test-secret",
		AppEnv:        "test",
		RateLimit:     1000,
	}
	for _, o := range opts {
		o(&cfg)
	}
	lr, rr := repos.NewListingRepo(db), repos.NewReviewRepo(db)
	deps := handlers.NewDeps(lr, rr, func(ctx context.Context) error { return repos.Ping(ctx, db) })
	app := handlers.NewApp(cfg, deps, store, metrics.InitRegistry())
	return &testEnv{app: app, db: db, listings: lr, reviews: rr}
}

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(httptest.NewRequest("GET", path, nil))
}

// csrf makes sure a token cookie exists and returns it.
func (c *client) csrf() string {
	c.t.Helper()
	if tok := c.cookies["csrf_"]; tok != "" {
		return tok
	}
	c.get("/listings/new")
	tok := c.cookies["csrf_"]
	if tok == "" {
		c.t.Fatal("csrf token missing")
	}
	return tok
}

func (c *client) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", c.csrf())
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func listingForm(title string, price string) url.Values {
	return url.Values{
		"title":       {title},
		"description": {"A lovely place to stay for a while."},
		"image":       {""},
		"price":       {price},
		"location":    {"Lisbon"},
		"country":     {"Portugal"},
	}
}
