package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"wanderlust/internal/log"
)

const (
	sessionsLocal = "sessions"
	flashSuccess  = "flash_success"
)

// Flash is the one-shot message shown on the next rendered page.
type Flash struct {
	Success string
}

func sessionStore(c *fiber.Ctx) *session.Store {
	s, _ := c.Locals(sessionsLocal).(*session.Store)
	return s
}

func setFlash(c *fiber.Ctx, key, msg string) {
	store := sessionStore(c)
	if store == nil {
		return
	}
	sess, err := store.Get(c)
	if err != nil {
		log.Error(c, "session.get", err, nil)
		return
	}
	sess.Set(key, msg)
	if err := sess.Save(); err != nil {
		log.Error(c, "session.save", err, nil)
	}
}

func popFlash(c *fiber.Ctx) Flash {
	store := sessionStore(c)
	if store == nil {
		return Flash{}
	}
	sess, err := store.Get(c)
	if err != nil {
		return Flash{}
	}
	var f Flash
	f.Success, _ = sess.Get(flashSuccess).(string)
	if f.Success == "" {
		return f
	}
	sess.Delete(flashSuccess)
	if err := sess.Save(); err != nil {
		log.Error(c, "session.save", err, nil)
	}
	return f
}
