package location

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
	"github.com/nearby-places/internal/pkg/utils"
)

// DefaultTimeout - максимальное ожидание фиксации позиции
const DefaultTimeout = 10 * time.Second

// Permissions - системный механизм разрешений на геолокацию
type Permissions interface {
	// PermissionStatus возвращает текущее решение без запроса пользователю
	PermissionStatus(ctx context.Context) (domain.PermissionStatus, error)
	// RequestPermission запрашивает доступ и ждёт решения пользователя
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
}

// PositionSource - источник координат устройства
type PositionSource interface {
	CurrentPosition(ctx context.Context, accuracy domain.Accuracy) (domain.LocationSnapshot, error)
}

type provider struct {
	permissions Permissions
	source      PositionSource
	timeout     time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewProvider создает LocationProvider. Повторы не выполняются:
// политика повторов принадлежит вызывающей стороне.
func NewProvider(
	permissions Permissions,
	source PositionSource,
	timeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) repository.LocationProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &provider{
		permissions: permissions,
		source:      source,
		timeout:     timeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// GetCurrentLocation запрашивает разрешение (если нужно) и позицию с профилем balanced
func (p *provider) GetCurrentLocation(ctx context.Context) (domain.LocationSnapshot, error) {
	if err := p.ensurePermission(ctx); err != nil {
		p.observe("permission_denied")
		return domain.LocationSnapshot{}, err
	}

	fixCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	snapshot, err := p.source.CurrentPosition(fixCtx, domain.AccuracyBalanced)
	if err != nil {
		p.logger.Warn("Failed to get position fix",
			zap.Duration("timeout", p.timeout),
			zap.Error(err))
		p.observe("unavailable")
		return domain.LocationSnapshot{}, errors.ErrPositionUnavailable.Wrap(err)
	}

	if !utils.ValidateCoordinates(snapshot.Coordinate.Lat, snapshot.Coordinate.Lon) {
		err := fmt.Errorf("position out of range: %v", snapshot.Coordinate)
		p.logger.Warn("Invalid position fix", zap.Error(err))
		p.observe("unavailable")
		return domain.LocationSnapshot{}, errors.ErrPositionUnavailable.Wrap(err)
	}

	p.observe("success")
	return snapshot, nil
}

func (p *provider) ensurePermission(ctx context.Context) error {
	status, err := p.permissions.PermissionStatus(ctx)
	if err != nil {
		p.logger.Warn("Failed to read permission status", zap.Error(err))
		return errors.ErrPermissionDenied.Wrap(err)
	}
	if status == domain.PermissionGranted {
		return nil
	}

	promptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err = p.permissions.RequestPermission(promptCtx)
	if err != nil {
		p.logger.Warn("Permission request failed", zap.Error(err))
		return errors.ErrPermissionDenied.Wrap(err)
	}
	if status != domain.PermissionGranted {
		p.logger.Info("Location permission not granted", zap.String("status", string(status)))
		return errors.ErrPermissionDenied
	}
	return nil
}

func (p *provider) observe(outcome string) {
	if p.metrics == nil {
		return
	}
	p.metrics.LocationRequests.WithLabelValues(outcome).Inc()
}
