package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"wanderlust/internal/domain"
	"wanderlust/internal/log"
	"wanderlust/internal/validate"
)

const genericMessage = "Something went wrong!"

// ErrorHandler is the single place errors become responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	status = clampStatus(status)
	if status >= fiber.StatusInternalServerError {
		log.Error(c, "server.error", err, map[string]any{"status": status})
	}

	c.Status(status)
	if rerr := render(c, "error", fiber.Map{"Message": msg, "StatusCode": status}); rerr != nil {
		log.Error(c, "render.error", rerr, nil)
		return c.Status(status).SendString(msg)
	}
	return nil
}

func classify(err error) (int, string) {
	var verrs validate.Errors
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verrs):
		return fiber.StatusBadRequest, verrs.Error()
	case errors.Is(err, domain.ErrListingNotFound):
		return fiber.StatusNotFound, "Listing not found!"
	case errors.Is(err, domain.ErrReviewNotFound):
		return fiber.StatusNotFound, "Review not found!"
	case errors.As(err, &ferr):
		if ferr.Code >= 400 && ferr.Code < 500 {
			return ferr.Code, ferr.Message
		}
		return ferr.Code, genericMessage
	}
	return fiber.StatusInternalServerError, genericMessage
}

// clampStatus maps anything outside the HTTP status range to 500.
func clampStatus(s int) int {
	if s < 100 || s > 599 {
		return fiber.StatusInternalServerError
	}
	return s
}
