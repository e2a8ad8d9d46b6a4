package handlers

import (
	"github.com/gofiber/fiber/v2"

	"wanderlust/internal/domain"
	"wanderlust/internal/log"
	"wanderlust/internal/services"
	"wanderlust/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	var in validate.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}
	rv, err := validate.Review(in)
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"form": "review", "err": err.Error()})
		return err
	}
	rv, err = h.Reviews.Add(c.UserContext(), id, rv)
	if err != nil {
		return err
	}
	log.Audit(c, "review.create", map[string]any{"listing_id": id, "id": rv.ID, "rating": rv.Rating})
	setFlash(c, flashSuccess, "New review created!")
	return c.Redirect("/listings/"+id, fiber.StatusSeeOther)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	reviewID, ok := validate.ID(c.Params("reviewId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "review"})
		return domain.ErrReviewNotFound
	}
	if err := h.Reviews.Remove(c.UserContext(), id, reviewID); err != nil {
		return err
	}
	log.Audit(c, "review.delete", map[string]any{"listing_id": id, "id": reviewID})
	setFlash(c, flashSuccess, "Review deleted!")
	return c.Redirect("/listings/"+id, fiber.StatusSeeOther)
}
