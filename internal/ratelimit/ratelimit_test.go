package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitEnforcesBudget(t *testing.T) {
	l := New(2, 0, 0)

	require.NoError(t, l.Wait(context.Background()))
	require.NoError(t, l.Wait(context.Background()))
	err := l.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")
	assert.Equal(t, 3, l.Used())
}

func TestWaitUnlimitedWhenBudgetZero(t *testing.T) {
	l := New(0, 0, 0)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Equal(t, 10, l.Used())
}

func TestWaitFirstCallImmediate(t *testing.T) {
	l := New(0, time.Second, time.Second)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitPacesConsecutiveCalls(t *testing.T) {
	l := New(0, 30*time.Millisecond, 30*time.Millisecond)

	require.NoError(t, l.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := New(0, 5*time.Second, 5*time.Second)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMaxDelayClampedToMin(t *testing.T) {
	// A reversed range must not panic in the random draw.
	l := New(0, 10*time.Millisecond, time.Millisecond)
	require.NoError(t, l.Wait(context.Background()))
	require.NoError(t, l.Wait(context.Background()))
}
