package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/config"
	"github.com/nearby-places/internal/delivery/http/handler"
	"github.com/nearby-places/internal/usecase"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := zap.NewNop()
	sessions := usecase.NewSessionManager(nil, nil, nil, false, time.Hour, clockwork.NewFakeClock(), nil, logger)
	t.Cleanup(sessions.Close)

	return NewServer(&config.Config{}, logger, handler.NewSessionHandler(sessions, logger))
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"NOT_FOUND"`)
}

func TestServer_UnknownSession(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"SESSION_NOT_FOUND"`)
}
