package mapbox

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
	"github.com/nearby-places/internal/pkg/utils"
)

const (
	placesPath       = "/geocoding/v5/mapbox.places/%s.json"
	detailsPath      = "/geocoding/v5/mapbox.places/place.json"
	poiType          = "poi"
	defaultTimeout   = 10 * time.Second
	operationSearch  = "search"
	operationDetails = "details"
)

type client struct {
	transport   repository.HTTPTransport
	accessToken string
	timeout     time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewPlaceRepository создает репозиторий мест поверх Mapbox Geocoding API.
// Токен - единственная сохраняемая конфигурация; экземпляр можно разделять между сессиями.
func NewPlaceRepository(
	transport repository.HTTPTransport,
	accessToken string,
	timeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (repository.PlaceRepository, error) {
	if accessToken == "" {
		return nil, errors.ErrMissingAPIKey
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		transport:   transport,
		accessToken: accessToken,
		timeout:     timeout,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// SearchNearbyPlaces ищет POI рядом с origin и сортирует их по расстоянию
func (c *client) SearchNearbyPlaces(
	ctx context.Context,
	origin domain.Coordinate,
	opts domain.SearchOptions,
) ([]domain.Place, error) {
	opts = opts.WithDefaults()

	params := map[string]any{
		// Mapbox ожидает порядок lon,lat
		"proximity":    fmt.Sprintf("%f,%f", origin.Lon, origin.Lat),
		"access_token": c.accessToken,
		"limit":        opts.Limit,
		"types":        poiType,
	}
	if opts.Radius != nil && utils.ValidateRadius(*opts.Radius) {
		box := utils.BoundingBox(origin, *opts.Radius)
		params["bbox"] = fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MinLat, box.MaxLon, box.MaxLat)
	}

	path := fmt.Sprintf(placesPath, url.PathEscape(opts.Category))

	start := time.Now()
	var resp geocodingResponse
	err := c.transport.Get(ctx, path, params, c.timeout, &resp)
	c.metrics.ObserveProvider(operationSearch, start)
	if err != nil {
		c.logger.Error("Places search error",
			zap.String("category", opts.Category),
			zap.Error(err))
		return nil, errors.ErrPlacesSearchFailed.Wrap(err)
	}

	if resp.Features == nil {
		c.logger.Error("Places search returned no features array",
			zap.String("category", opts.Category))
		return nil, errors.ErrPlacesSearchFailed.Wrap(fmt.Errorf("malformed response: missing features"))
	}

	places := make([]domain.Place, 0, len(resp.Features))
	for i, f := range resp.Features {
		place, err := f.toPlace(opts.Category)
		if err != nil {
			c.logger.Error("Malformed feature in places response",
				zap.Int("index", i),
				zap.String("feature_id", f.ID),
				zap.Error(err))
			return nil, errors.ErrPlacesSearchFailed.Wrap(err)
		}

		distance := utils.DistanceMeters(origin, place.Coordinates)
		place.Distance = &distance
		places = append(places, place)
	}

	SortByDistance(places)

	c.logger.Debug("Places search successful",
		zap.String("category", opts.Category),
		zap.Int("count", len(places)))

	return places, nil
}

// GetPlaceDetails возвращает подробную запись о месте.
// "Не найдено" и ошибка транспорта дают одинаковый результат: nil, nil.
func (c *client) GetPlaceDetails(ctx context.Context, placeID string) (*domain.Place, error) {
	if placeID == "" {
		return nil, nil
	}

	params := map[string]any{
		"id":           placeID,
		"access_token": c.accessToken,
	}

	start := time.Now()
	var resp geocodingResponse
	err := c.transport.Get(ctx, detailsPath, params, c.timeout, &resp)
	c.metrics.ObserveProvider(operationDetails, start)
	if err != nil {
		c.logger.Warn("Place details error",
			zap.String("place_id", placeID),
			zap.Error(err))
		return nil, nil
	}

	if len(resp.Features) == 0 {
		c.logger.Debug("Place details not found", zap.String("place_id", placeID))
		return nil, nil
	}

	f := resp.Features[0]
	place, err := f.toPlace("")
	if err != nil {
		c.logger.Warn("Malformed feature in details response",
			zap.String("place_id", placeID),
			zap.Error(err))
		return nil, nil
	}

	if f.Properties != nil {
		place.Rating = f.Properties.Rating
		place.PriceLevel = f.Properties.PriceLevel
	}

	return &place, nil
}

// SortByDistance сортирует места по возрастанию расстояния.
// Место без расстояния считается находящимся на расстоянии 0.
func SortByDistance(places []domain.Place) {
	sort.SliceStable(places, func(i, j int) bool {
		return distanceOrZero(places[i]) < distanceOrZero(places[j])
	})
}

func distanceOrZero(p domain.Place) float64 {
	if p.Distance == nil {
		return 0
	}
	return *p.Distance
}
