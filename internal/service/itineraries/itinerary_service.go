package itineraries

import (
	"context"

	"github.com/tripflow/booking/internal/domain"
	"github.com/tripflow/booking/internal/repository"
	"go.uber.org/zap"
)

// ItineraryUseCase is the read-only catalog behind the resolve step and the
// public itinerary endpoints.
type ItineraryUseCase interface {
	List(ctx context.Context) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
}

type Cache interface {
	GetItineraries(ctx context.Context) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, itineraries []domain.Itinerary) error
	GetItinerary(ctx context.Context, id string) (*domain.Itinerary, error)
	SetItinerary(ctx context.Context, it *domain.Itinerary) error
}

type Service struct {
	repo  repository.ItineraryRepository
	cache Cache
	log   *zap.Logger
}

func NewService(repo repository.ItineraryRepository, cache Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Itinerary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetItineraries(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	itineraries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, itineraries); err != nil {
			s.log.Warn("itinerary cache write failed", zap.Error(err))
		}
	}
	return itineraries, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetItinerary(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetItinerary(ctx, it); err != nil {
			s.log.Warn("itinerary cache write failed", zap.String("itinerary_id", id), zap.Error(err))
		}
	}
	return it, nil
}

var _ ItineraryUseCase = (*Service)(nil)
