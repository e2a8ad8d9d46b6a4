package handlers

import (
	"github.com/gofiber/fiber/v2"

	"wanderlust/internal/log"
	"wanderlust/internal/ranking"
	"wanderlust/internal/services"
)

type ExperienceHandler struct {
	Experiences *services.ExperienceService
}

type sortOption struct {
	Value    ranking.Sort
	Label    string
	Selected bool
}

func (h *ExperienceHandler) Index(c *fiber.Ctx) error {
	minPrice, maxPrice, minRating := c.Query("minPrice"), c.Query("maxPrice"), c.Query("minRating")
	p, ignored := ranking.ParseParams(c.Query("sort"), minPrice, maxPrice, minRating)
	if len(ignored) > 0 {
		log.Info(c, "validation.ignored", map[string]any{"params": ignored})
	}

	experiences, err := h.Experiences.Rank(c.UserContext(), p)
	if err != nil {
		return err
	}

	opts := make([]sortOption, len(ranking.Sorts))
	for i, s := range ranking.Sorts {
		opts[i] = sortOption{Value: s, Label: s.Label(), Selected: s == p.Sort}
	}
	return render(c, "experiences/index", fiber.Map{
		"Title":       "Experiences",
		"Experiences": experiences,
		"Count":       len(experiences),
		"Sorts":       opts,
		"MinPrice":    minPrice,
		"MaxPrice":    maxPrice,
		"MinRating":   minRating,
	})
}
