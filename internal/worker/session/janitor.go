package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/worker"
)

// DefaultSweepInterval - период проверки неактивных сессий
const DefaultSweepInterval = time.Minute

// IdleEvictor удаляет сессии, неактивные к моменту now
type IdleEvictor interface {
	EvictIdle(now time.Time) int
}

// Janitor периодически завершает неактивные сессии
type Janitor struct {
	*worker.BaseWorker
	sessions IdleEvictor
	interval time.Duration
	clock    clockwork.Clock
}

// NewJanitor создает новый Janitor
func NewJanitor(
	sessions IdleEvictor,
	interval time.Duration,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Janitor{
		BaseWorker: worker.NewBaseWorker("session-janitor", logger),
		sessions:   sessions,
		interval:   interval,
		clock:      clock,
	}
}

// Start запускает цикл очистки и блокируется до остановки
func (j *Janitor) Start(ctx context.Context) error {
	logger := j.Logger()
	logger.Info("Starting session janitor", zap.Duration("interval", j.interval))

	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.Chan():
			if evicted := j.sessions.EvictIdle(j.clock.Now()); evicted > 0 {
				logger.Debug("Sweep finished", zap.Int("evicted", evicted))
			}
		}
	}
}
