package pacer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/pacer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPacerWaitJitter(t *testing.T) {
	var slept []time.Duration

	p := pacer.New(0, 600*time.Millisecond,
		pacer.WithRandom(func(n int64) int64 { return n - 1 }),
		pacer.WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	require.NoError(t, p.Wait(context.TODO()), "shouldn't return any error")
	require.NoError(t, p.Wait(context.TODO()), "shouldn't return any error")

	assert.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond}, slept,
		"should sleep up to configured jitter",
	)
}

func TestUnitPacerWaitInterval(t *testing.T) {
	p := pacer.New(50*time.Millisecond, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.TODO()), "shouldn't return any error")
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond, "should space out calls by interval")
}

func TestUnitPacerWaitCanceled(t *testing.T) {
	p := pacer.New(time.Hour, 0)
	require.NoError(t, p.Wait(context.TODO()), "first wait shouldn't block")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, p.Wait(ctx), "should return error for canceled context")
}

func TestUnitEach(t *testing.T) {
	t.Run("all items in order", func(t *testing.T) {
		var visited []int

		err := pacer.Each(context.TODO(), pacer.Unlimited(), []int{1, 2, 3}, func(_ context.Context, item int) error {
			visited = append(visited, item)
			return nil
		})

		require.NoError(t, err, "shouldn't return any error")
		assert.Equal(t, []int{1, 2, 3}, visited, "should visit items in order")
	})

	t.Run("stops on error", func(t *testing.T) {
		var visited []int

		err := pacer.Each(context.TODO(), pacer.Unlimited(), []int{1, 2, 3}, func(_ context.Context, item int) error {
			visited = append(visited, item)
			if item == 2 {
				return assert.AnError
			}
			return nil
		})

		require.ErrorIs(t, err, assert.AnError, "should return fn error")
		assert.Equal(t, []int{1, 2}, visited, "should stop after failing item")
	})

	t.Run("throttle error", func(t *testing.T) {
		err := pacer.Each(context.TODO(), failingThrottle{}, []int{1}, func(context.Context, int) error {
			t.Fatal("fn shouldn't be called")
			return nil
		})

		require.ErrorIs(t, err, errThrottle, "should return throttle error")
	})
}

var errThrottle = errors.New("throttle")

type failingThrottle struct{}

func (failingThrottle) Wait(context.Context) error { return errThrottle }
