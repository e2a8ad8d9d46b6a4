package handlers

import (
	"github.com/gofiber/fiber/v2"

	"wanderlust/internal/domain"
	"wanderlust/internal/log"
	"wanderlust/internal/services"
	"wanderlust/internal/validate"
)

type ListingHandler struct {
	Listings *services.ListingService
}

// listingID reads :id. Anything that cannot be an identifier is simply
// a listing that does not exist.
func listingID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "listing"})
		return "", domain.ErrListingNotFound
	}
	return id, nil
}

func parseListing(c *fiber.Ctx) (domain.Listing, error) {
	var in validate.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return domain.Listing{}, fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}
	l, err := validate.Listing(in)
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"form": "listing", "err": err.Error()})
	}
	return l, err
}

func (h *ListingHandler) Index(c *fiber.Ctx) error {
	location := c.Query("location")
	listings, err := h.Listings.List(c.UserContext(), location)
	if err != nil {
		return err
	}
	return render(c, "listings/index", fiber.Map{
		"Title": "All Listings", "Listings": listings, "Search": location,
	})
}

func (h *ListingHandler) New(c *fiber.Ctx) error {
	return render(c, "listings/new", fiber.Map{"Title": "New Listing"})
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	l, err := parseListing(c)
	if err != nil {
		return err
	}
	l, err = h.Listings.Create(c.UserContext(), l)
	if err != nil {
		return err
	}
	log.Audit(c, "listing.create", map[string]any{"id": l.ID})
	setFlash(c, flashSuccess, "New listing created!")
	return c.Redirect("/listings/"+l.ID, fiber.StatusSeeOther)
}

func (h *ListingHandler) Show(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	d, err := h.Listings.Detail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "listings/show", fiber.Map{"Title": d.Title, "Listing": d})
}

func (h *ListingHandler) Edit(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	l, err := h.Listings.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "listings/edit", fiber.Map{"Title": "Edit " + l.Title, "Listing": l})
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	l, err := parseListing(c)
	if err != nil {
		return err
	}
	if _, err := h.Listings.Update(c.UserContext(), id, l); err != nil {
		return err
	}
	log.Audit(c, "listing.update", map[string]any{"id": id})
	setFlash(c, flashSuccess, "Listing updated!")
	return c.Redirect("/listings/"+id, fiber.StatusSeeOther)
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return err
	}
	_, n, err := h.Listings.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	log.Audit(c, "listing.delete", map[string]any{"id": id, "reviews_deleted": n})
	setFlash(c, flashSuccess, "Listing deleted!")
	return c.Redirect("/listings", fiber.StatusSeeOther)
}
