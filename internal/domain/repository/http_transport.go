package repository

import (
	"context"
	"time"
)

// HTTPTransport выполняет GET-запросы к API провайдера и декодирует JSON в out.
// Базовый URL и заголовки - ответственность реализации.
type HTTPTransport interface {
	Get(ctx context.Context, path string, params map[string]any, timeout time.Duration, out any) error
}
