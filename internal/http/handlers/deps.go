package handlers

import (
	"context"

	"wanderlust/internal/services"
)

type Deps struct {
	ListingHandler    *ListingHandler
	ReviewHandler     *ReviewHandler
	ExperienceHandler *ExperienceHandler
	HealthHandler     *HealthHandler
}

// NewDeps wires services and handlers over one pair of stores. ping backs
// the health check and may be nil.
func NewDeps(listings services.ListingStore, reviews services.ReviewStore, ping func(context.Context) error) *Deps {
	listingSvc := services.NewListingService(listings, reviews)
	reviewSvc := services.NewReviewService(listings, reviews)
	experienceSvc := services.NewExperienceService(listings)

	return &Deps{
		ListingHandler:    &ListingHandler{Listings: listingSvc},
		ReviewHandler:     &ReviewHandler{Reviews: reviewSvc},
		ExperienceHandler: &ExperienceHandler{Experiences: experienceSvc},
		HealthHandler:     &HealthHandler{Ping: ping},
	}
}
