package itineraries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tripflow/booking/internal/domain"
	"go.uber.org/zap"
)

type MockItineraryRepository struct {
	mock.Mock
}

func (m *MockItineraryRepository) List(ctx context.Context) ([]domain.Itinerary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) HoldSeats(ctx context.Context, id string, class domain.CabinClass, count int) error {
	args := m.Called(ctx, id, class, count)
	return args.Error(0)
}

func (m *MockItineraryRepository) ReleaseSeats(ctx context.Context, id string, class domain.CabinClass, count int) error {
	args := m.Called(ctx, id, class, count)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetItineraries(ctx context.Context) ([]domain.Itinerary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockCache) SetItineraries(ctx context.Context, itineraries []domain.Itinerary) error {
	args := m.Called(ctx, itineraries)
	return args.Error(0)
}

func (m *MockCache) GetItinerary(ctx context.Context, id string) (*domain.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Itinerary), args.Error(1)
}

func (m *MockCache) SetItinerary(ctx context.Context, it *domain.Itinerary) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func TestService_List_CacheHit(t *testing.T) {
	repo := &MockItineraryRepository{}
	cache := &MockCache{}
	svc := NewService(repo, cache, zap.NewNop())

	ctx := context.Background()
	cached := []domain.Itinerary{{ID: "it-1", FlightNumber: "TF100"}}
	cache.On("GetItineraries", ctx).Return(cached, nil).Once()

	got, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestService_List_CacheMissFillsCache(t *testing.T) {
	repo := &MockItineraryRepository{}
	cache := &MockCache{}
	svc := NewService(repo, cache, zap.NewNop())

	ctx := context.Background()
	stored := []domain.Itinerary{{ID: "it-1"}, {ID: "it-2"}}
	cache.On("GetItineraries", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(stored, nil).Once()
	cache.On("SetItineraries", ctx, stored).Return(nil).Once()

	got, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stored, got)
	cache.AssertExpectations(t)
}

func TestService_List_CacheWriteFailureIsIgnored(t *testing.T) {
	repo := &MockItineraryRepository{}
	cache := &MockCache{}
	svc := NewService(repo, cache, zap.NewNop())

	ctx := context.Background()
	stored := []domain.Itinerary{{ID: "it-1"}}
	cache.On("GetItineraries", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(stored, nil).Once()
	cache.On("SetItineraries", ctx, stored).Return(errors.New("redis down")).Once()

	got, err := svc.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestService_GetByID_NotFound(t *testing.T) {
	repo := &MockItineraryRepository{}
	cache := &MockCache{}
	svc := NewService(repo, cache, zap.NewNop())

	ctx := context.Background()
	cache.On("GetItinerary", ctx, "missing").Return(nil, nil).Once()
	repo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	got, err := svc.GetByID(ctx, "missing")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_GetByID_WithoutCache(t *testing.T) {
	repo := &MockItineraryRepository{}
	svc := NewService(repo, nil, zap.NewNop())

	ctx := context.Background()
	it := &domain.Itinerary{ID: "it-1"}
	repo.On("GetByID", ctx, "it-1").Return(it, nil).Once()

	got, err := svc.GetByID(ctx, "it-1")

	assert.NoError(t, err)
	assert.Equal(t, it, got)
}
