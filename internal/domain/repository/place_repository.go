package repository

import (
	"context"

	"github.com/nearby-places/internal/domain"
)

// PlaceRepository определяет методы поиска мест у внешнего провайдера
type PlaceRepository interface {
	// SearchNearbyPlaces возвращает места рядом с origin, отсортированные по расстоянию
	SearchNearbyPlaces(ctx context.Context, origin domain.Coordinate, opts domain.SearchOptions) ([]domain.Place, error)

	// GetPlaceDetails возвращает подробную запись о месте.
	// Отсутствие данных (не найдено или ошибка транспорта) - nil, nil.
	GetPlaceDetails(ctx context.Context, placeID string) (*domain.Place, error)
}
