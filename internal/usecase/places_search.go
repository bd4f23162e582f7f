package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
)

const (
	DefaultSearchCacheTTL      = 5 * time.Minute
	DefaultSearchMaxRetries    = 2
	DefaultSearchRetryInterval = 200 * time.Millisecond
	DefaultCachePrecision      = 4
)

// SearchPolicy - политика кеширования и повторов поиска
type SearchPolicy struct {
	CacheTTL      time.Duration
	Precision     int // знаков после запятой в координатах ключа кеша
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultSearchPolicy: кеш 5 минут, до 2 повторов
func DefaultSearchPolicy() SearchPolicy {
	return SearchPolicy{
		CacheTTL:      DefaultSearchCacheTTL,
		Precision:     DefaultCachePrecision,
		MaxRetries:    DefaultSearchMaxRetries,
		RetryInterval: DefaultSearchRetryInterval,
	}
}

// PlacesSearchUseCase - кешируемый поиск мест с повторами и объединением одинаковых запросов.
// Один экземпляр разделяется всеми сессиями.
type PlacesSearchUseCase struct {
	placeRepo repository.PlaceRepository
	cacheRepo repository.CacheRepository
	policy    SearchPolicy
	inflight  singleflight.Group
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewPlacesSearchUseCase - создание нового PlacesSearchUseCase
func NewPlacesSearchUseCase(
	placeRepo repository.PlaceRepository,
	cacheRepo repository.CacheRepository,
	policy SearchPolicy,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PlacesSearchUseCase {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.RetryInterval <= 0 {
		policy.RetryInterval = DefaultSearchRetryInterval
	}
	return &PlacesSearchUseCase{
		placeRepo: placeRepo,
		cacheRepo: cacheRepo,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
	}
}

// Search возвращает места рядом с origin. Повторный запрос с тем же ключом в пределах TTL
// обслуживается из кеша, одновременные одинаковые запросы разделяют один вызов провайдера.
func (uc *PlacesSearchUseCase) Search(
	ctx context.Context,
	origin domain.Coordinate,
	opts domain.SearchOptions,
) ([]domain.Place, error) {
	opts = opts.WithDefaults()
	key := CacheKey(origin, opts, uc.policy.Precision)

	if places, ok := uc.fromCache(ctx, key); ok {
		return places, nil
	}

	// Ведущий запрос не должен отменяться вместе с контекстом одного из ожидающих
	leaderCtx := context.WithoutCancel(ctx)

	v, err, shared := uc.inflight.Do(key, func() (interface{}, error) {
		places, err := uc.fetchWithRetry(leaderCtx, origin, opts)
		if err != nil {
			return nil, err
		}
		uc.store(leaderCtx, key, places)
		return places, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.logger.Debug("Places search coalesced", zap.String("key", key))
	}

	return domain.ClonePlaces(v.([]domain.Place)), nil
}

func (uc *PlacesSearchUseCase) fetchWithRetry(
	ctx context.Context,
	origin domain.Coordinate,
	opts domain.SearchOptions,
) ([]domain.Place, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = uc.policy.RetryInterval
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(uc.policy.MaxRetries)),
		ctx,
	)

	var places []domain.Place
	attempt := 0
	operation := func() error {
		attempt++
		result, err := uc.placeRepo.SearchNearbyPlaces(ctx, origin, opts)
		if err != nil {
			return err
		}
		places = result
		return nil
	}
	notify := func(err error, wait time.Duration) {
		uc.logger.Warn("Places search failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		uc.logger.Error("Places search failed after retries",
			zap.Int("attempts", attempt),
			zap.Error(err))
		if !stderrors.Is(err, errors.ErrPlacesSearchFailed) {
			err = errors.ErrPlacesSearchFailed.Wrap(err)
		}
		return nil, err
	}

	return places, nil
}

func (uc *PlacesSearchUseCase) fromCache(ctx context.Context, key string) ([]domain.Place, bool) {
	if uc.cacheRepo == nil {
		return nil, false
	}

	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.observeCache("error")
		uc.logger.Warn("Search cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if data == nil {
		uc.observeCache("miss")
		return nil, false
	}

	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		uc.observeCache("error")
		uc.logger.Warn("Corrupted search cache entry", zap.String("key", key), zap.Error(err))
		_ = uc.cacheRepo.Delete(ctx, key)
		return nil, false
	}

	uc.observeCache("hit")
	if places == nil {
		places = []domain.Place{}
	}
	return places, true
}

func (uc *PlacesSearchUseCase) store(ctx context.Context, key string, places []domain.Place) {
	if uc.cacheRepo == nil || uc.policy.CacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(places)
	if err != nil {
		uc.logger.Warn("Failed to marshal places for cache", zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, data, uc.policy.CacheTTL); err != nil {
		uc.logger.Warn("Search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (uc *PlacesSearchUseCase) observeCache(result string) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.SearchCache.WithLabelValues(result).Inc()
}

// CacheKey строит ключ кеша из округлённых координат и нормализованных опций.
// MinRating не влияет на результат поиска и в ключ не входит.
func CacheKey(origin domain.Coordinate, opts domain.SearchOptions, precision int) string {
	opts = opts.WithDefaults()

	radius := "-"
	if opts.Radius != nil {
		radius = strconv.FormatFloat(*opts.Radius, 'f', -1, 64)
	}

	return fmt.Sprintf("places:%s,%s:%s:%d:%s",
		roundCoord(origin.Lat, precision),
		roundCoord(origin.Lon, precision),
		strings.ToLower(strings.TrimSpace(opts.Category)),
		opts.Limit,
		radius,
	)
}

func roundCoord(v float64, precision int) string {
	scale := math.Pow(10, float64(precision))
	rounded := math.Round(v*scale) / scale
	if rounded == 0 {
		rounded = 0 // -0 и 0 дают один ключ
	}
	return strconv.FormatFloat(rounded, 'f', precision, 64)
}
