package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nearby-places/internal/domain/repository"
)

// redactedParams не попадают в логи
var redactedParams = map[string]struct{}{
	"access_token": {},
}

// StatusError - провайдер ответил статусом, отличным от 200
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider API error: status %d, body: %s", e.Code, e.Body)
}

type httpTransport struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
	logger     *zap.Logger
}

// NewHTTPTransport создает транспорт для GET-запросов к провайдеру.
// Таймаут задаётся на каждый запрос, поэтому у http.Client его нет.
func NewHTTPTransport(baseURL string, debug bool, logger *zap.Logger) repository.HTTPTransport {
	return &httpTransport{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		debug:      debug,
		logger:     logger,
	}
}

// Get выполняет запрос и декодирует JSON-ответ в out
func (t *httpTransport) Get(
	ctx context.Context,
	path string,
	params map[string]any,
	timeout time.Duration,
	out any,
) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	query := encodeParams(params)
	fullURL := t.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	if t.debug {
		t.logger.Debug("Calling provider API",
			zap.String("path", path),
			zap.String("query", redact(query).Encode()),
			zap.Duration("timeout", timeout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("Provider request failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		t.logger.Warn("Provider API returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if t.debug {
		t.logger.Debug("Provider API call successful",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)))
	}

	return nil
}

func encodeParams(params map[string]any) url.Values {
	values := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}
	return values
}

func redact(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		if _, ok := redactedParams[k]; ok {
			out.Set(k, "***")
			continue
		}
		out[k] = v
	}
	return out
}
