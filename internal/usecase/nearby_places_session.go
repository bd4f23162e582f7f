package usecase

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
)

// PlacesSearcher - кешируемый поиск мест, разделяемый между сессиями
type PlacesSearcher interface {
	Search(ctx context.Context, origin domain.Coordinate, opts domain.SearchOptions) ([]domain.Place, error)
}

// NearbyPlacesSession - состояние одной сессии поиска мест.
// Состояние меняется только операциями RefreshLocation и SearchPlaces;
// чтение идёт через Snapshot, который возвращает копию.
type NearbyPlacesSession struct {
	id         string
	locator    repository.LocationProvider
	placeRepo  repository.PlaceRepository
	searcher   PlacesSearcher
	autoSearch bool
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger

	refreshes singleflight.Group

	mu           sync.Mutex
	state        domain.SessionState
	generation   uint64
	lastActivity time.Time
}

// NewNearbyPlacesSession создает сессию в начальном состоянии (location idle, мест нет)
func NewNearbyPlacesSession(
	id string,
	locator repository.LocationProvider,
	placeRepo repository.PlaceRepository,
	searcher PlacesSearcher,
	autoSearch bool,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *NearbyPlacesSession {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &NearbyPlacesSession{
		id:           id,
		locator:      locator,
		placeRepo:    placeRepo,
		searcher:     searcher,
		autoSearch:   autoSearch,
		clock:        clock,
		metrics:      metrics,
		logger:       logger.With(zap.String("session_id", id)),
		state:        domain.NewSessionState(),
		lastActivity: clock.Now(),
	}
}

// ID возвращает идентификатор сессии
func (s *NearbyPlacesSession) ID() string {
	return s.id
}

// LastActivity возвращает время последней операции
func (s *NearbyPlacesSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Snapshot возвращает копию текущего состояния
func (s *NearbyPlacesSession) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Start выполняет первичное определение позиции при открытии сессии
func (s *NearbyPlacesSession) Start(ctx context.Context) {
	if err := s.RefreshLocation(ctx); err != nil {
		s.logger.Info("Initial location refresh failed", zap.Error(err))
	}
}

// RefreshLocation запрашивает позицию устройства. При ошибке прежние места остаются.
// Смена позиции делает текущий список устаревшим и отбрасывает незавершённые поиски.
func (s *NearbyPlacesSession) RefreshLocation(ctx context.Context) error {
	s.mu.Lock()
	s.touchLocked()
	s.state.LocationStatus = domain.StatusLoading
	s.state.LocationError = ""
	s.mu.Unlock()

	v, err, _ := s.refreshes.Do("location", func() (interface{}, error) {
		return s.locator.GetCurrentLocation(ctx)
	})

	s.mu.Lock()
	if err != nil {
		s.state.LocationStatus = domain.StatusError
		s.state.LocationError = userMessage(err, errors.ErrPositionUnavailable)
		s.mu.Unlock()

		s.logger.Warn("Location refresh failed", zap.Error(err))
		return err
	}

	snapshot := v.(domain.LocationSnapshot)
	s.state.CurrentLocation = &snapshot
	s.state.LocationStatus = domain.StatusIdle
	s.state.LocationError = ""

	// Результаты и незавершённые поиски относятся к прежней позиции
	s.generation++
	if len(s.state.Places) > 0 {
		s.state.PlacesStale = true
	}
	if s.state.PlacesStatus == domain.StatusLoading {
		s.state.PlacesStatus = domain.StatusIdle
	}
	s.mu.Unlock()

	s.logger.Debug("Location refreshed",
		zap.Float64("lat", snapshot.Coordinate.Lat),
		zap.Float64("lon", snapshot.Coordinate.Lon))

	if s.autoSearch {
		if err := s.SearchPlaces(ctx, nil); err != nil {
			s.logger.Info("Search after location refresh failed", zap.Error(err))
		}
	}
	return nil
}

// SearchPlaces ищет места вокруг текущей позиции. opts == nil - повторить с прежними опциями.
// Без позиции запрос не выполняется и ошибкой не считается.
func (s *NearbyPlacesSession) SearchPlaces(ctx context.Context, opts *domain.SearchOptions) error {
	s.mu.Lock()
	s.touchLocked()
	if opts != nil {
		s.state.SearchOptions = opts.Clone()
	}
	if s.state.CurrentLocation == nil {
		s.mu.Unlock()
		s.observeSearch("skipped")
		s.logger.Debug("Search skipped: location unknown")
		return nil
	}

	origin := s.state.CurrentLocation.Coordinate
	options := s.state.SearchOptions.Clone()
	s.generation++
	gen := s.generation
	s.state.PlacesStatus = domain.StatusLoading
	s.state.PlacesError = ""
	s.mu.Unlock()

	places, err := s.searcher.Search(ctx, origin, options)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.observeSearch("superseded")
		s.logger.Debug("Discarding superseded search result",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", s.generation))
		return nil
	}

	if err != nil {
		s.state.PlacesStatus = domain.StatusError
		s.state.PlacesError = userMessage(err, errors.ErrPlacesSearchFailed)
		s.observeSearch("error")
		return err
	}

	s.state.Places = places
	s.state.PlacesStale = false
	s.state.PlacesStatus = domain.StatusSuccess
	s.observeSearch("success")
	return nil
}

// GetPlaceDetails запрашивает полную запись о месте независимо от состояния сессии.
// Любая неудача, включая "не найдено", даёт nil. Состояние не меняется.
func (s *NearbyPlacesSession) GetPlaceDetails(ctx context.Context, placeID string) *domain.Place {
	s.mu.Lock()
	s.touchLocked()
	s.mu.Unlock()

	place, err := s.placeRepo.GetPlaceDetails(ctx, placeID)
	if err != nil {
		s.logger.Warn("Place details lookup failed",
			zap.String("place_id", placeID),
			zap.Error(err))
		place = nil
	}

	if s.metrics != nil {
		outcome := "found"
		if place == nil {
			outcome = "absent"
		}
		s.metrics.DetailsRequests.WithLabelValues(outcome).Inc()
	}
	return place
}

// SelectPlace возвращает подробную запись, если она доступна, иначе краткую из текущего списка
func (s *NearbyPlacesSession) SelectPlace(ctx context.Context, placeID string) (domain.Place, bool) {
	var summary *domain.Place
	s.mu.Lock()
	for i := range s.state.Places {
		if s.state.Places[i].ID == placeID {
			p := s.state.Places[i].Clone()
			summary = &p
			break
		}
	}
	s.mu.Unlock()

	if details := s.GetPlaceDetails(ctx, placeID); details != nil {
		return *details, true
	}
	if summary != nil {
		return *summary, true
	}
	return domain.Place{}, false
}

func (s *NearbyPlacesSession) touchLocked() {
	s.lastActivity = s.clock.Now()
}

func (s *NearbyPlacesSession) observeSearch(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchRequests.WithLabelValues(outcome).Inc()
}

// userMessage возвращает текст для пользователя без деталей транспорта
func userMessage(err error, fallback *errors.AppError) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback.Message
}
