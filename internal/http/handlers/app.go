package handlers

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/hkdf"

	"wanderlust/internal/config"
	"wanderlust/internal/log"
	"wanderlust/internal/metrics"
)

const csrfCookie = "csrf_"

// NewApp builds the fiber app with views, middleware and every route.
func NewApp(cfg config.Config, deps *Deps, sessions *session.Store, reg *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        NewEngine(cfg.TemplatesDir, cfg.AppEnv == "dev"),
		ViewsLayout:  "layouts/main",
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	// Method override goes first so the rest of the chain sees the real verb.
	app.Use(methodOverride)
	app.Use(requestid.New())
	app.Use(metrics.Middleware())
	app.Use(logger.New(logger.Config{Output: log.Writer()}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key:    cookieKey(cfg.SessionSecret),
		Except: []string{csrfCookie},
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(sessionsLocal, sessions)
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     csrfCookie,
		ContextKey:     "csrf",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.AppEnv == "prod",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return fiber.NewError(fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", cfg.StaticDir)
	Register(app, deps, cfg, reg)
	return app
}

// NewEngine loads the HTML templates with the helpers they call.
func NewEngine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFunc("price", formatPrice)
	engine.AddFunc("stars", stars)
	return engine
}

// methodOverride lets HTML forms reach PUT and DELETE routes by posting
// a _method field (or query parameter).
func methodOverride(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		m := c.Query("_method")
		if m == "" {
			m = c.FormValue("_method")
		}
		switch m = strings.ToUpper(m); m {
		case fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			c.Method(m)
		}
	}
	return c.Next()
}

// cookieKey derives the 32-byte AES key encryptcookie expects from the
// session secret.
func cookieKey(secret string) string {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("wanderlust cookies")), key); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

// formatPrice renders a nightly price with thousands separators.
func formatPrice(p float64) string {
	return humanize.CommafWithDigits(p, 2)
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
