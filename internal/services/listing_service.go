package services

import (
	"context"
	"fmt"

	"wanderlust/internal/domain"
	"wanderlust/internal/validate"
)

type ListingService struct {
	Listings ListingStore
	Reviews  ReviewStore
}

func NewListingService(listings ListingStore, reviews ReviewStore) *ListingService {
	return &ListingService{Listings: listings, Reviews: reviews}
}

// List returns listings in insertion order, narrowed by a location or
// country substring when one is given.
func (s *ListingService) List(ctx context.Context, location string) ([]domain.Listing, error) {
	return s.Listings.List(ctx, domain.ListingFilter{Location: validate.Location(location)})
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Listing, error) {
	return s.Listings.Get(ctx, id)
}

// Detail loads a listing with its reviews in display order.
func (s *ListingService) Detail(ctx context.Context, id string) (domain.ListingDetail, error) {
	l, err := s.Listings.Get(ctx, id)
	if err != nil {
		return domain.ListingDetail{}, err
	}
	reviews, err := s.Reviews.ByIDs(ctx, l.Reviews)
	if err != nil {
		return domain.ListingDetail{}, fmt.Errorf("load reviews for %s: %w", id, err)
	}
	return domain.ListingDetail{Listing: l, ReviewDocs: reviews}, nil
}

func (s *ListingService) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	l.ApplyDefaults()
	if err := s.Listings.Create(ctx, &l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

// Update replaces the editable fields of listing id.
func (s *ListingService) Update(ctx context.Context, id string, l domain.Listing) (domain.Listing, error) {
	l.ID = id
	l.ApplyDefaults()
	if err := s.Listings.Update(ctx, &l); err != nil {
		return domain.Listing{}, err
	}
	return s.Listings.Get(ctx, id)
}

// Delete removes the listing and then every review it referenced. It
// returns the deleted listing and how many reviews went with it.
func (s *ListingService) Delete(ctx context.Context, id string) (domain.Listing, int64, error) {
	old, err := s.Listings.Delete(ctx, id)
	if err != nil {
		return domain.Listing{}, 0, err
	}
	n, err := s.Reviews.DeleteByIDs(ctx, old.Reviews)
	if err != nil {
		return old, 0, fmt.Errorf("cascade reviews of %s: %w", id, err)
	}
	return old, n, nil
}
