package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "net failure" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return e.timeout }

func TestExponentialBackoff_DelayGrowsAndCaps(t *testing.T) {
	t.Parallel()

	b := NewExponentialBackoff()
	for attempt := 0; attempt < 10; attempt++ {
		delay := b.Delay(attempt)
		require.GreaterOrEqual(t, delay, time.Duration(0))
		require.LessOrEqual(t, delay, 5*time.Second)
	}
	// The floor (half the uncapped delay) still grows with the attempt.
	require.GreaterOrEqual(t, b.Delay(4), 500*time.Millisecond)
}

func TestRetryableFailure(t *testing.T) {
	t.Parallel()

	codes := []int{429, 503}

	require.True(t, retryableFailure(errors.New("server error"), 503, codes))
	require.True(t, retryableFailure(errors.New("rate limited"), 429, codes))
	require.False(t, retryableFailure(errors.New("not found"), 404, codes))
	require.False(t, retryableFailure(errors.New("forbidden"), 403, codes))

	require.True(t, retryableFailure(context.DeadlineExceeded, 0, codes))
	require.True(t, retryableFailure(timeoutErr{timeout: true}, 0, codes))
	require.False(t, retryableFailure(timeoutErr{timeout: false}, 0, codes))

	// Cancellation is the caller giving up, never a transient failure.
	require.False(t, retryableFailure(context.Canceled, 503, codes))
}

func TestSleepWithContext_CancelUnblocks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepWithContext(ctx, time.Minute)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepWithContext_ZeroDelayReturnsImmediately(t *testing.T) {
	t.Parallel()

	require.NoError(t, sleepWithContext(context.Background(), 0))
}
