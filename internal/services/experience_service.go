package services

import (
	"context"
	"time"

	"wanderlust/internal/domain"
	"wanderlust/internal/metrics"
	"wanderlust/internal/ranking"
)

type ExperienceService struct {
	Listings ListingStore
}

func NewExperienceService(listings ListingStore) *ExperienceService {
	return &ExperienceService{Listings: listings}
}

func (s *ExperienceService) Rank(ctx context.Context, p ranking.Params) ([]domain.Experience, error) {
	start := time.Now()
	out, err := s.Listings.Rank(ctx, p)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRanking(string(p.Sort), len(out), time.Since(start))
	return out, nil
}
