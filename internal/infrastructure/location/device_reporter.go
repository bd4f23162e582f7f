package location

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
)

// DeviceReporter - устройство, которое само сообщает решение о доступе и координаты.
// Используется как Permissions и PositionSource для одной сессии.
type DeviceReporter struct {
	clock clockwork.Clock

	mu         sync.Mutex
	permission domain.PermissionStatus
	position   *domain.LocationSnapshot
	// updated закрывается и заменяется при каждом новом сообщении
	updated chan struct{}
}

// NewDeviceReporter создает DeviceReporter без решения о доступе и без позиции
func NewDeviceReporter(clock clockwork.Clock) *DeviceReporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DeviceReporter{
		clock:      clock,
		permission: domain.PermissionUndetermined,
		updated:    make(chan struct{}),
	}
}

// ReportPermission сохраняет решение пользователя
func (d *DeviceReporter) ReportPermission(status domain.PermissionStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.permission = status
	d.notifyLocked()
}

// ReportPosition сохраняет последнюю позицию. Пустой CapturedAt заполняется текущим временем.
func (d *DeviceReporter) ReportPosition(snapshot domain.LocationSnapshot) {
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = d.clock.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.position = &snapshot
	d.notifyLocked()
}

// PermissionStatus возвращает последнее сообщённое решение
func (d *DeviceReporter) PermissionStatus(_ context.Context) (domain.PermissionStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission, nil
}

// RequestPermission ждёт решения пользователя. Если решение не поступило
// до отмены ctx, возвращается PermissionUndetermined.
func (d *DeviceReporter) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	for {
		d.mu.Lock()
		status := d.permission
		wait := d.updated
		d.mu.Unlock()

		if status != domain.PermissionUndetermined {
			return status, nil
		}

		select {
		case <-wait:
		case <-ctx.Done():
			return domain.PermissionUndetermined, nil
		}
	}
}

// CurrentPosition возвращает последнюю сообщённую позицию или ждёт первую
func (d *DeviceReporter) CurrentPosition(ctx context.Context, _ domain.Accuracy) (domain.LocationSnapshot, error) {
	for {
		d.mu.Lock()
		position := d.position
		wait := d.updated
		d.mu.Unlock()

		if position != nil {
			return *position, nil
		}

		select {
		case <-wait:
		case <-ctx.Done():
			return domain.LocationSnapshot{}, ctx.Err()
		}
	}
}

func (d *DeviceReporter) notifyLocked() {
	close(d.updated)
	d.updated = make(chan struct{})
}

// Device связывает DeviceReporter с провайдером позиции, который его опрашивает
type Device struct {
	*DeviceReporter
	locator repository.LocationProvider
}

// NewDevice создает устройство одной сессии
func NewDevice(
	clock clockwork.Clock,
	timeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Device {
	reporter := NewDeviceReporter(clock)
	return &Device{
		DeviceReporter: reporter,
		locator:        NewProvider(reporter, reporter, timeout, metrics, logger),
	}
}

// Locator возвращает LocationProvider поверх сообщений устройства
func (d *Device) Locator() repository.LocationProvider {
	return d.locator
}
