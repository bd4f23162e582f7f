package worker

import (
	"context"
)

// Worker - фоновая задача процесса, которой управляет WorkerManager
type Worker interface {
	// Start блокируется до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует о завершении, повторные вызовы безопасны
	Stop() error

	Name() string
}
