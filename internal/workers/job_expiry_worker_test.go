package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int
	err   error
	last  atomic.Value
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.last.Store(now)
	return f.n, f.err
}

func TestJobExpiryWorker_RunOnce(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	f := &fakeExpirer{n: 3}
	w := NewJobExpiryWorker(f, "")
	w.nowFn = func() time.Time { return fixed }

	assert.Equal(t, 3, w.RunOnce(context.Background()))
	assert.Equal(t, fixed, f.last.Load())

	// ошибка только логируется
	f.err = errors.New("db down")
	f.n = 0
	assert.Zero(t, w.RunOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, w.RunOnce(ctx))
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestJobExpiryWorker_Schedule(t *testing.T) {
	f := &fakeExpirer{}
	w := NewJobExpiryWorker(f, "@every 1s")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestJobExpiryWorker_BadSpec(t *testing.T) {
	w := NewJobExpiryWorker(&fakeExpirer{}, "not a cron spec")
	assert.Error(t, w.Run(context.Background()))
}
