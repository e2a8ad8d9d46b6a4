package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"

	"wanderlust/internal/config"
	"wanderlust/internal/log"
	"wanderlust/internal/metrics"
)

func Register(app *fiber.App, deps *Deps, cfg config.Config, reg *prometheus.Registry) {
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/listings") })

	// Listings
	app.Get("/listings", deps.ListingHandler.Index)
	app.Get("/listings/new", deps.ListingHandler.New)
	app.Post("/listings", deps.ListingHandler.Create)
	app.Get("/listings/:id", deps.ListingHandler.Show)
	app.Get("/listings/:id/edit", deps.ListingHandler.Edit)
	app.Put("/listings/:id", deps.ListingHandler.Update)
	app.Delete("/listings/:id", deps.ListingHandler.Delete)

	// Reviews
	app.Post("/listings/:id/reviews", deps.ReviewHandler.Create)
	app.Delete("/listings/:id/reviews/:reviewId", deps.ReviewHandler.Delete)

	// Experiences run an aggregation per request; throttle harder.
	app.Get("/experiences", limiter.New(limiter.Config{
		Max:        experiencesLimit(cfg.RateLimit),
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|experiences"
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Security(c, "rate.experiences.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}), deps.ExperienceHandler.Index)

	// Health, metrics & 404
	app.Get("/healthz", deps.HealthHandler.Check)
	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))
	}
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page Not Found!")
	})
}

func experiencesLimit(global int) int {
	if n := global / 2; n > 0 {
		return n
	}
	return 1
}
