package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"wanderlust/internal/metrics"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := metrics.InitRegistry()

	metrics.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	metrics.ObserveRanking("popular", 3, 4*time.Millisecond)
	metrics.ObserveSession("miss")

	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"wanderlust_http_requests_total",
		"wanderlust_ranking_query_duration_seconds",
		"wanderlust_ranking_results",
		"wanderlust_session_storage_events_total",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestMiddlewareRecordsHandledErrorStatus(t *testing.T) {
	reg := metrics.InitRegistry()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString("handled")
		},
	})
	app.Use(metrics.Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrBadRequest })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	want := `wanderlust_http_requests_total{method="GET",route="/boom",status="418"}`
	if !strings.Contains(string(body), want) {
		t.Fatalf("missing %s in:\n%s", want, body)
	}
}
