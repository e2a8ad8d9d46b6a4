package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var out io.Writer = os.Stdout

type forward struct{}

func (forward) Write(p []byte) (int, error) { return out.Write(p) }

// Writer follows whatever output the logger currently uses. It is handed to
// the access-log middleware.
func Writer() io.Writer { return forward{} }

// Setup installs the process-wide logger. APP_ENV=dev (or development)
// gets the human-friendly console writer; everything else is JSON lines.
func Setup(env string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
	if env == "dev" || env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zlog.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput redirects the logger to w, keeping JSON encoding.
func SetOutput(w io.Writer) {
	out = w
	zlog.Logger = zlog.Logger.Output(w)
}

func write(level zerolog.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := zlog.WithLevel(level).Str("action", action)
	if kind != "" {
		e = e.Str("kind", kind)
	}
	if c != nil {
		e = e.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.Str("req_id", rid)
		}
	}
	if err != nil {
		e = e.Str("err", err.Error())
	}
	if len(fields) > 0 {
		e = e.Interface("fields", fields)
	}
	e.Msg(action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.InfoLevel, "", c, action, nil, fields)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.InfoLevel, "audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zerolog.WarnLevel, "security", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zerolog.ErrorLevel, "", c, action, err, fields)
}
