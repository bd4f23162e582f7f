package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/delivery/http/handler"
	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/infrastructure/location"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
	"github.com/nearby-places/internal/usecase"
)

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

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type sessionBody struct {
	ID    string              `json:"id"`
	State domain.SessionState `json:"state"`
}

var origin = domain.Coordinate{Lat: 37.0, Lon: -122.0}

func places() []domain.Place {
	d1, d2 := 120.0, 480.0
	return []domain.Place{
		{ID: "poi.1", Name: "Taqueria", Category: "restaurant", Coordinates: domain.Coordinate{Lat: 37.001, Lon: -122.0}, Distance: &d1},
		{ID: "poi.2", Name: "Noodle Bar", Category: "restaurant", Coordinates: domain.Coordinate{Lat: 37.004, Lon: -122.0}, Distance: &d2},
	}
}

func setupApp(t *testing.T, repo *MockPlaceRepository) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewRealClock()

	policy := usecase.DefaultSearchPolicy()
	policy.RetryInterval = time.Millisecond
	searcher := usecase.NewPlacesSearchUseCase(repo, nil, policy, metrics, logger)

	sessions := usecase.NewSessionManager(
		searcher,
		repo,
		func() usecase.Device { return location.NewDevice(clock, 100*time.Millisecond, metrics, logger) },
		true,
		time.Hour,
		clock,
		metrics,
		logger,
	)
	t.Cleanup(sessions.Close)

	h := handler.NewSessionHandler(sessions, logger)

	app := fiber.New()
	api := app.Group("/api/v1/sessions")
	api.Post("/", h.CreateSession)
	api.Get("/:id", h.GetSession)
	api.Delete("/:id", h.DeleteSession)
	api.Post("/:id/device", h.ReportDevice)
	api.Post("/:id/location/refresh", h.RefreshLocation)
	api.Post("/:id/search", h.SearchPlaces)
	api.Get("/:id/places/:place_id", h.SelectPlace)
	api.Get("/:id/places/:place_id/details", h.GetPlaceDetails)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func decodeSession(t *testing.T, env envelope) sessionBody {
	t.Helper()
	var s sessionBody
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func readyDevice() map[string]any {
	return map[string]any{
		"device": map[string]any{
			"permission": "granted",
			"latitude":   origin.Lat,
			"longitude":  origin.Lon,
		},
	}
}

func TestSessionHandler_CreateWithReadyDevice(t *testing.T) {
	repo := &MockPlaceRepository{}
	repo.On("SearchNearbyPlaces", mock.Anything, origin, mock.Anything).Return(places(), nil)
	app := setupApp(t, repo)

	status, env := do(t, app, http.MethodPost, "/api/v1/sessions", readyDevice())
	require.Equal(t, http.StatusCreated, status)

	s := decodeSession(t, env)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.StatusSuccess, s.State.PlacesStatus)
	require.Len(t, s.State.Places, 2)
	assert.Equal(t, "poi.1", s.State.Places[0].ID)
	require.NotNil(t, s.State.CurrentLocation)
	assert.Equal(t, origin, s.State.CurrentLocation.Coordinate)
	assert.EqualValues(t, 2, env.Meta["total"])

	status, env = do(t, app, http.MethodGet, "/api/v1/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeSession(t, env).State.Places, 2)
}

func TestSessionHandler_CreateValidation(t *testing.T) {
	app := setupApp(t, &MockPlaceRepository{})

	status, env := do(t, app, http.MethodPost, "/api/v1/sessions", map[string]any{
		"device": map[string]any{"permission": "sometimes"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrInvalidRequest.Code, env.Error.Code)

	status, env = do(t, app, http.MethodPost, "/api/v1/sessions", map[string]any{
		"device": map[string]any{"latitude": 10.0},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrInvalidCoordinates.Code, env.Error.Code)
}

func TestSessionHandler_PermissionDenied(t *testing.T) {
	app := setupApp(t, &MockPlaceRepository{})

	status, env := do(t, app, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, status)
	id := decodeSession(t, env).ID

	status, _ = do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/device", map[string]any{"permission": "denied"})
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/location/refresh", nil)
	require.Equal(t, http.StatusOK, status)

	s := decodeSession(t, env)
	assert.Equal(t, domain.StatusError, s.State.LocationStatus)
	assert.Equal(t, "Location permission denied", s.State.LocationError)
	assert.Nil(t, s.State.CurrentLocation)
	assert.Equal(t, "Location permission denied", env.Meta["error"])
}

func TestSessionHandler_SearchFailureKeepsPlaces(t *testing.T) {
	repo := &MockPlaceRepository{}
	repo.On("SearchNearbyPlaces", mock.Anything, origin, domain.SearchOptions{Category: "restaurant", Limit: 20}).
		Return(places(), nil)
	repo.On("SearchNearbyPlaces", mock.Anything, origin, domain.SearchOptions{Category: "cafe", Limit: 20}).
		Return(nil, errors.ErrPlacesSearchFailed)
	app := setupApp(t, repo)

	_, env := do(t, app, http.MethodPost, "/api/v1/sessions", readyDevice())
	id := decodeSession(t, env).ID

	status, env := do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/search", map[string]any{"category": "cafe"})
	require.Equal(t, http.StatusOK, status)

	s := decodeSession(t, env)
	assert.Equal(t, domain.StatusError, s.State.PlacesStatus)
	assert.Equal(t, "Failed to search nearby places", s.State.PlacesError)
	assert.Len(t, s.State.Places, 2)
	assert.Equal(t, "cafe", s.State.SearchOptions.Category)

	status, env = do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/search", map[string]any{"limit": 500})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "max", env.Error.Details["limit"])
}

func TestSessionHandler_Places(t *testing.T) {
	rating := 4.5
	details := &domain.Place{ID: "poi.1", Name: "Taqueria", Category: "restaurant", Rating: &rating}

	repo := &MockPlaceRepository{}
	repo.On("SearchNearbyPlaces", mock.Anything, origin, mock.Anything).Return(places(), nil)
	repo.On("GetPlaceDetails", mock.Anything, "poi.1").Return(details, nil)
	repo.On("GetPlaceDetails", mock.Anything, "poi.2").Return(nil, nil)
	repo.On("GetPlaceDetails", mock.Anything, "missing-id").Return(nil, nil)
	app := setupApp(t, repo)

	_, env := do(t, app, http.MethodPost, "/api/v1/sessions", readyDevice())
	id := decodeSession(t, env).ID
	base := "/api/v1/sessions/" + id + "/places/"

	var body struct {
		Place domain.Place `json:"place"`
	}

	status, env := do(t, app, http.MethodGet, base+"poi.1/details", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.NotNil(t, body.Place.Rating)
	assert.Equal(t, 4.5, *body.Place.Rating)

	status, env = do(t, app, http.MethodGet, base+"missing-id/details", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrDetailsUnavailable.Code, env.Error.Code)

	// Без деталей возвращается запись из результатов поиска
	status, env = do(t, app, http.MethodGet, base+"poi.2", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "Noodle Bar", body.Place.Name)

	status, _ = do(t, app, http.MethodGet, base+"missing-id", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionHandler_UnknownAndDeleted(t *testing.T) {
	app := setupApp(t, &MockPlaceRepository{})

	status, env := do(t, app, http.MethodGet, "/api/v1/sessions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrSessionNotFound.Code, env.Error.Code)

	_, env = do(t, app, http.MethodPost, "/api/v1/sessions", nil)
	id := decodeSession(t, env).ID

	status, _ = do(t, app, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/search", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
