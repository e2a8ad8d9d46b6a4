package services

import (
	"context"

	"wanderlust/internal/domain"
	"wanderlust/internal/ranking"
)

// ListingStore is implemented by repos.ListingRepo (sqlite) and
// docstore.ListingRepository (MongoDB).
type ListingStore interface {
	List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
	Get(ctx context.Context, id string) (domain.Listing, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, l *domain.Listing) error
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id string) (domain.Listing, error)
	AttachReview(ctx context.Context, listingID, reviewID string) error
	DetachReview(ctx context.Context, listingID, reviewID string) error
	Rank(ctx context.Context, p ranking.Params) ([]domain.Experience, error)
}

type ReviewStore interface {
	Create(ctx context.Context, rv *domain.Review) error
	ByIDs(ctx context.Context, ids []string) ([]domain.Review, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
