package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
)

// MockPlaceRepository is a mock of PlaceRepository
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) SearchNearbyPlaces(ctx context.Context, origin domain.Coordinate, opts domain.SearchOptions) ([]domain.Place, error) {
	args := m.Called(ctx, origin, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Place), args.Error(1)
}

func (m *MockPlaceRepository) GetPlaceDetails(ctx context.Context, placeID string) (*domain.Place, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Place), args.Error(1)
}

// MockLocationProvider is a mock of LocationProvider
type MockLocationProvider struct {
	mock.Mock
}

func (m *MockLocationProvider) GetCurrentLocation(ctx context.Context) (domain.LocationSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LocationSnapshot), args.Error(1)
}

// funcPlaceRepository - репозиторий с управляемым поведением для тестов конкурентности
type funcPlaceRepository struct {
	searchCalls atomic.Int32
	search      func(ctx context.Context, origin domain.Coordinate, opts domain.SearchOptions) ([]domain.Place, error)
}

func (r *funcPlaceRepository) SearchNearbyPlaces(ctx context.Context, origin domain.Coordinate, opts domain.SearchOptions) ([]domain.Place, error) {
	r.searchCalls.Add(1)
	return r.search(ctx, origin, opts)
}

func (r *funcPlaceRepository) GetPlaceDetails(context.Context, string) (*domain.Place, error) {
	return nil, nil
}

// fakeDevice - устройство сессии с фиксированным провайдером позиции
type fakeDevice struct {
	mu          sync.Mutex
	permissions []domain.PermissionStatus
	positions   []domain.LocationSnapshot
	locator     repository.LocationProvider
}

func (d *fakeDevice) ReportPermission(status domain.PermissionStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permissions = append(d.permissions, status)
}

func (d *fakeDevice) ReportPosition(snapshot domain.LocationSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.positions = append(d.positions, snapshot)
}

func (d *fakeDevice) Locator() repository.LocationProvider {
	return d.locator
}

func ptr[T any](v T) *T {
	return &v
}

func samplePlaces(ids ...string) []domain.Place {
	places := make([]domain.Place, len(ids))
	for i, id := range ids {
		places[i] = domain.Place{
			ID:          id,
			Name:        "Place " + id,
			Category:    "restaurant",
			Coordinates: domain.Coordinate{Lat: 37.0 + float64(i)*0.001, Lon: -122.0},
			Distance:    ptr(float64(i+1) * 100),
		}
	}
	return places
}
