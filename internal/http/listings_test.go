package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"wanderlust/internal/domain"
)

func TestRootRedirectsToListings(t *testing.T) {
	env := newTestEnv(t)
	resp := newClient(t, env.app).get("/")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/listings" {
		t.Fatalf("want 302 to /listings, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestListingLifecycle(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t, env.app)

	// create
	resp := c.post("/listings", listingForm("Seaside Flat", "120"))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create: want 303, got %d body=%s", resp.StatusCode, body(t, resp))
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/listings/") {
		t.Fatalf("create redirected to %q", loc)
	}
	id := strings.TrimPrefix(loc, "/listings/")

	// show, with the flash from the redirect
	resp = c.get(loc)
	s := body(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("show: want 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{"Seaside Flat", "New listing created!", domain.DefaultImageURL[:40]} {
		if !strings.Contains(s, want) {
			t.Fatalf("show page missing %q", want)
		}
	}
	// flash is one-shot
	if s := body(t, c.get(loc)); strings.Contains(s, "New listing created!") {
		t.Fatal("flash shown twice")
	}

	// edit form
	resp = c.get(loc + "/edit")
	if s := body(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(s, `value="Seaside Flat"`) {
		t.Fatalf("edit: got %d", resp.StatusCode)
	}

	// update through the method override
	form := listingForm("Seaside Penthouse", "300")
	form.Set("_method", "PUT")
	resp = c.post(loc, form)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != loc {
		t.Fatalf("update: want 303 to %s, got %d %q", loc, resp.StatusCode, resp.Header.Get("Location"))
	}
	s = body(t, c.get(loc))
	if !strings.Contains(s, "Seaside Penthouse") || !strings.Contains(s, "Listing updated!") {
		t.Fatal("updated title or flash missing")
	}

	// reviews
	for _, r := range []string{"5", "3"} {
		resp = c.post(loc+"/reviews", url.Values{"comment": {"Great stay, would return."}, "rating": {r}})
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("review: want 303, got %d body=%s", resp.StatusCode, body(t, resp))
		}
	}
	l, err := env.listings.Get(context.Background(), id)
	if err != nil || len(l.Reviews) != 2 {
		t.Fatalf("want 2 review refs, got %v (err %v)", l.Reviews, err)
	}
	s = body(t, c.get(loc))
	if !strings.Contains(s, "Great stay, would return.") || !strings.Contains(s, "Anonymous") {
		t.Fatal("review not rendered")
	}

	// delete one review
	resp = c.post(loc+"/reviews/"+l.Reviews[0], url.Values{"_method": {"DELETE"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("review delete: want 303, got %d", resp.StatusCode)
	}
	if s := body(t, c.get(loc)); !strings.Contains(s, "Review deleted!") {
		t.Fatal("review delete flash missing")
	}

	// delete the listing; the remaining review goes with it
	resp = c.post(loc+"?_method=DELETE", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/listings" {
		t.Fatalf("delete: want 303 to /listings, got %d", resp.StatusCode)
	}
	if s := body(t, c.get("/listings")); !strings.Contains(s, "Listing deleted!") {
		t.Fatal("delete flash missing")
	}
	if resp := c.get(loc); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted listing: want 404, got %d", resp.StatusCode)
	}
	var n int
	if err := env.db.Get(&n, `SELECT COUNT(*) FROM reviews`); err != nil || n != 0 {
		t.Fatalf("want 0 reviews after cascade, got %d (err %v)", n, err)
	}
}

func TestListingsLocationSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, l := range []domain.Listing{
		{Title: "Tokyo Capsule", Description: "Tiny and tidy.", Price: 40, Location: "Tokyo", Country: "Japan"},
		{Title: "Paris Attic", Description: "Under the roofs.", Price: 90, Location: "Paris", Country: "France"},
	} {
		l.ApplyDefaults()
		if err := env.listings.Create(ctx, &l); err != nil {
			t.Fatal(err)
		}
	}
	s := body(t, newClient(t, env.app).get("/listings?location=JAPAN"))
	if !strings.Contains(s, "Tokyo Capsule") || strings.Contains(s, "Paris Attic") {
		t.Fatalf("location search wrong:\n%s", s)
	}
}

func TestTemplateAutoEscape(t *testing.T) {
	env := newTestEnv(t)
	l := domain.Listing{Title: "<script>alert(1)</script>", Description: "<b>desc</b>", Price: 1, Location: "XSS", Country: "XSS"}
	l.ApplyDefaults()
	if err := env.listings.Create(context.Background(), &l); err != nil {
		t.Fatal(err)
	}

	s := body(t, newClient(t, env.app).get("/listings/"+l.ID))
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", s)
	}
}

func TestCSRFRequiredOnWrites(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t, env.app)
	form := listingForm("No Token Here", "10")
	form.Set("csrf", "forged")
	c.csrf()

	resp := c.post("/listings", form)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403, got %d", resp.StatusCode)
	}
	n, _ := env.listings.Count(context.Background())
	if n != 0 {
		t.Fatalf("listing created despite csrf failure")
	}
}
