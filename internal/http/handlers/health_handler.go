package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"wanderlust/internal/log"
)

type HealthHandler struct {
	Ping func(context.Context) error
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			log.Error(c, "health.store", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}
