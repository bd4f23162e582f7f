package repository

import (
	"context"

	"github.com/nearby-places/internal/domain"
)

// LocationProvider получает текущую позицию устройства
type LocationProvider interface {
	// GetCurrentLocation запрашивает разрешение и позицию.
	// Ошибки: errors.ErrPermissionDenied, errors.ErrPositionUnavailable.
	GetCurrentLocation(ctx context.Context) (domain.LocationSnapshot, error)
}

// DeviceReporter принимает данные, сообщаемые клиентским устройством
type DeviceReporter interface {
	ReportPermission(status domain.PermissionStatus)
	ReportPosition(snapshot domain.LocationSnapshot)
}
