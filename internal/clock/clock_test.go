package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_Now(t *testing.T) {
	t.Parallel()

	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

func TestRealClock_Sleep_CompletesShortWait(t *testing.T) {
	t.Parallel()

	c := RealClock{}

	start := time.Now()
	err := c.Sleep(context.Background(), 10*time.Millisecond)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestRealClock_Sleep_NonPositiveDuration(t *testing.T) {
	t.Parallel()

	c := RealClock{}

	require.NoError(t, c.Sleep(context.Background(), 0))
	require.NoError(t, c.Sleep(context.Background(), -time.Second))

	// A canceled context surfaces even when there is nothing to wait for.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.Sleep(ctx, 0), context.Canceled)
}

func TestRealClock_Sleep_CancellationInterruptsWait(t *testing.T) {
	t.Parallel()

	c := RealClock{}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.Sleep(ctx, 10*time.Second)

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation should interrupt the wait promptly")
}
