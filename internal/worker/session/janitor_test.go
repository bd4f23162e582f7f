package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/worker/session"
)

type recordingEvictor struct {
	sweeps chan time.Time
}

func (e *recordingEvictor) EvictIdle(now time.Time) int {
	e.sweeps <- now
	return 1
}

func TestJanitor_SweepsOnEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	evictor := &recordingEvictor{sweeps: make(chan time.Time, 4)}
	janitor := session.NewJanitor(evictor, time.Minute, clock, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- janitor.Start(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Minute)
	select {
	case now := <-evictor.sweeps:
		assert.Equal(t, clock.Now(), now)
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}

	require.NoError(t, janitor.Stop())
	require.NoError(t, <-done)
	assert.True(t, janitor.IsStopped())
	assert.Equal(t, "session-janitor", janitor.Name())
}

func TestJanitor_StopsOnContextCancel(t *testing.T) {
	evictor := &recordingEvictor{sweeps: make(chan time.Time, 1)}
	janitor := session.NewJanitor(evictor, 0, clockwork.NewFakeClock(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := janitor.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
