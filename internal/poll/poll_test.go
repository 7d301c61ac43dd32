package poll

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPollerRunsImmediatelyAndOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := New("test", 20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, discard())

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestPollerContinuesAfterError(t *testing.T) {
	var calls atomic.Int32
	p := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("fetch failed")
	}, discard())

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestPollerRefresh(t *testing.T) {
	var calls atomic.Int32
	p := New("test", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, discard())

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	p.Refresh()
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestPollerStop(t *testing.T) {
	var calls atomic.Int32
	p := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, discard())

	p.Start(context.Background())
	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no passes after Stop")

	// stopping twice is safe
	p.Stop()
}

func TestPollerRefreshAfterStopIsNoop(t *testing.T) {
	p := New("test", time.Hour, func(ctx context.Context) error {
		return nil
	}, discard())

	p.Start(context.Background())
	p.Stop()
	p.Refresh()
}
