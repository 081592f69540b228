package services

import (
	"context"
	"log"

	"zakazBack/internal/models"
)

type RatingService struct {
	RatingRepo RatingStore
	Cache      StatsCache
	Events     Publisher
}

// SubmitRating rejects an unset rating at the boundary, then lets the store
// run the whole completion in one transaction: rating appended, provider
// aggregates recomputed, request marked completed.
func (s *RatingService) SubmitRating(ctx context.Context, rating models.Rating) (models.Rating, models.ProviderStats, error) {
	if !models.ValidRatingValue(rating.Rating) {
		return models.Rating{}, models.ProviderStats{}, models.ErrInvalidRating
	}

	saved, stats, err := s.RatingRepo.SubmitRating(ctx, rating)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, rating.ProviderID); err != nil {
			log.Printf("stats cache invalidate for provider %d: %v", rating.ProviderID, err)
		}
	}
	if s.Events != nil {
		s.Events.RequestsChanged()
	}
	return saved, stats, nil
}
