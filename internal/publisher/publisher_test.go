package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_CollectsEvents(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	event := CompletionEvent{
		JobID:      "job-1",
		Site:       "diariolibre",
		Status:     "completed",
		Records:    12,
		FinishedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, m.Publish(context.Background(), event))
	require.Equal(t, []CompletionEvent{event}, m.Events())
}

func TestMemory_ConcurrentPublish(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Publish(context.Background(), CompletionEvent{JobID: "job"})
		}()
	}
	wg.Wait()
	require.Len(t, m.Events(), 16)
}

func TestMemory_EventsReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Publish(context.Background(), CompletionEvent{JobID: "job-1"}))
	events := m.Events()
	events[0].JobID = "mutated"
	require.Equal(t, "job-1", m.Events()[0].JobID)
}

func TestNoop_PublishSucceeds(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewNoop().Publish(context.Background(), CompletionEvent{}))
}
