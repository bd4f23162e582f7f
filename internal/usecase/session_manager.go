package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/domain"
	"github.com/nearby-places/internal/domain/repository"
	"github.com/nearby-places/internal/observability"
	"github.com/nearby-places/internal/pkg/errors"
)

// Device - устройство одной сессии: принимает сообщения клиента и отдаёт позицию
type Device interface {
	repository.DeviceReporter
	Locator() repository.LocationProvider
}

// DeviceFactory создает устройство для новой сессии
type DeviceFactory func() Device

// DeviceReport - сообщение клиента о разрешении и/или позиции
type DeviceReport struct {
	Permission *domain.PermissionStatus
	Position   *domain.LocationSnapshot
}

type sessionEntry struct {
	session *NearbyPlacesSession
	device  Device
}

// SessionManager - реестр активных сессий
type SessionManager struct {
	searcher   PlacesSearcher
	placeRepo  repository.PlaceRepository
	newDevice  DeviceFactory
	autoSearch bool
	idleTTL    time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger

	// baseCtx отменяется при Close и прерывает фоновые Start
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewSessionManager - создание нового SessionManager
func NewSessionManager(
	searcher PlacesSearcher,
	placeRepo repository.PlaceRepository,
	newDevice DeviceFactory,
	autoSearch bool,
	idleTTL time.Duration,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SessionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		searcher:   searcher,
		placeRepo:  placeRepo,
		newDevice:  newDevice,
		autoSearch: autoSearch,
		idleTTL:    idleTTL,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
		baseCtx:    ctx,
		cancel:     cancel,
		sessions:   make(map[string]*sessionEntry),
	}
}

// Create открывает сессию и запускает первичное определение позиции.
// Если клиент сразу передал разрешение и позицию, Start выполняется синхронно,
// иначе - в фоне (ожидание позиции может длиться до таймаута провайдера).
func (m *SessionManager) Create(ctx context.Context, report DeviceReport) *NearbyPlacesSession {
	id := uuid.NewString()
	device := m.newDevice()
	applyReport(device, report)

	session := NewNearbyPlacesSession(
		id,
		device.Locator(),
		m.placeRepo,
		m.searcher,
		m.autoSearch,
		m.clock,
		m.metrics,
		m.logger,
	)

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{session: session, device: device}
	count := len(m.sessions)
	m.mu.Unlock()

	m.setActive(count)
	m.logger.Info("Session created", zap.String("session_id", id))

	ready := report.Position != nil &&
		report.Permission != nil && *report.Permission == domain.PermissionGranted
	if ready {
		session.Start(ctx)
		return session
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		session.Start(m.baseCtx)
	}()

	return session
}

// Get возвращает сессию по идентификатору
func (m *SessionManager) Get(id string) (*NearbyPlacesSession, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return entry.session, nil
}

// Report передаёт сообщение клиента устройству сессии
func (m *SessionManager) Report(id string, report DeviceReport) error {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return errors.ErrSessionNotFound
	}
	applyReport(entry.device, report)
	return nil
}

// Delete завершает сессию
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return errors.ErrSessionNotFound
	}

	m.setActive(count)
	m.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// EvictIdle удаляет сессии, неактивные дольше idleTTL. Возвращает число удалённых.
func (m *SessionManager) EvictIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	evicted := 0
	for id, entry := range m.sessions {
		if now.Sub(entry.session.LastActivity()) >= m.idleTTL {
			delete(m.sessions, id)
			evicted++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		m.setActive(count)
		m.logger.Info("Idle sessions evicted",
			zap.Int("evicted", evicted),
			zap.Int("remaining", count))
	}
	return evicted
}

// Count возвращает число активных сессий
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close прерывает фоновые операции и ждёт их завершения
func (m *SessionManager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *SessionManager) setActive(count int) {
	if m.metrics == nil {
		return
	}
	m.metrics.ActiveSessions.Set(float64(count))
}

func applyReport(device Device, report DeviceReport) {
	if report.Permission != nil {
		device.ReportPermission(*report.Permission)
	}
	if report.Position != nil {
		device.ReportPosition(*report.Position)
	}
}
