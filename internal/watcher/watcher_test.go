package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReconnects(t *testing.T) {
	t.Run("re-establishes a broken listener", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := 0
		listen := func(ctx context.Context) (bool, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return true, errors.New("stream broken")
		}

		w := &Watcher{}
		w.watch(ctx, "test listener", listen)

		require.Equal(t, 2, calls)
	})

	t.Run("stops when cancelled during the reconnect wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		listen := func(ctx context.Context) (bool, error) {
			calls++
			return false, errors.New("stream broken")
		}

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		w := &Watcher{}
		w.watch(ctx, "test listener", listen)

		require.Equal(t, 1, calls)
	})
}

func TestNextReconnectDelay(t *testing.T) {
	require.Equal(t, time.Second, nextReconnectDelay(0))
	require.Equal(t, 2*time.Second, nextReconnectDelay(time.Second))
	require.Equal(t, 32*time.Second, nextReconnectDelay(16*time.Second))

	// Capped.
	require.Equal(t, time.Minute, nextReconnectDelay(40*time.Second))
	require.Equal(t, time.Minute, nextReconnectDelay(time.Minute))
}
