package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"wanderlust/internal/domain"
)

type ReviewService struct {
	Listings ListingStore
	Reviews  ReviewStore
}

func NewReviewService(listings ListingStore, reviews ReviewStore) *ReviewService {
	return &ReviewService{Listings: listings, Reviews: reviews}
}

// Add stores rv and appends it to the listing's references. The two writes
// are separate; if the listing vanished in between, the new review is
// deleted again.
func (s *ReviewService) Add(ctx context.Context, listingID string, rv domain.Review) (domain.Review, error) {
	if _, err := s.Listings.Get(ctx, listingID); err != nil {
		return domain.Review{}, err
	}
	if rv.Author == "" {
		rv.Author = domain.DefaultAuthor
	}
	if err := s.Reviews.Create(ctx, &rv); err != nil {
		return domain.Review{}, err
	}
	if err := s.Listings.AttachReview(ctx, listingID, rv.ID); err != nil {
		if derr := s.Reviews.Delete(ctx, rv.ID); derr != nil && !errors.Is(derr, domain.ErrReviewNotFound) {
			log.Error().Err(derr).Str("review_id", rv.ID).Msg("orphaned review after failed attach")
		}
		return domain.Review{}, err
	}
	return rv, nil
}

// Remove detaches reviewID from the listing and deletes it. A review the
// listing does not reference is reported as not found.
func (s *ReviewService) Remove(ctx context.Context, listingID, reviewID string) error {
	l, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if !slices.Contains(l.Reviews, reviewID) {
		return domain.ErrReviewNotFound
	}
	if err := s.Listings.DetachReview(ctx, listingID, reviewID); err != nil {
		return err
	}
	if err := s.Reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			return err
		}
		return fmt.Errorf("delete review %s: %w", reviewID, err)
	}
	return nil
}
