package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSaver struct {
	saved     atomic.Int32
	release   chan struct{}
	ignoreCtx bool
}

func (c *countingSaver) Save(ctx context.Context, text string, _ types.AnalysisRecord) *types.MemoryEntry {
	if c.release != nil && c.ignoreCtx {
		<-c.release
	} else if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil
		}
	}
	c.saved.Add(1)
	return &types.MemoryEntry{ID: "id-" + text, SourceText: text}
}

func TestPersister_SavesAndNotifies(t *testing.T) {
	var (
		mu    sync.Mutex
		saved []string
	)
	saver := &countingSaver{}
	p := NewPersister(saver, PersisterConfig{
		OnSaved: func(e types.MemoryEntry) {
			mu.Lock()
			saved = append(saved, e.SourceText)
			mu.Unlock()
		},
	})

	for _, text := range []string{"one", "two", "three"} {
		assert.True(t, p.Submit(text, types.AnalysisRecord{}))
	}
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Equal(t, int32(3), saver.saved.Load())
	assert.ElementsMatch(t, []string{"one", "two", "three"}, saved)
}

func TestPersister_FullQueueDropsWithoutBlocking(t *testing.T) {
	saver := &countingSaver{release: make(chan struct{})}
	m := metrics.NewCollector("test")
	p := NewPersister(saver, PersisterConfig{QueueSize: 1, Workers: 1, Metrics: m})

	// The first job occupies the worker, the second fills the queue.
	require.True(t, p.Submit("busy", types.AnalysisRecord{}))
	require.Eventually(t, func() bool { return p.Pending() == 0 }, time.Second, time.Millisecond)
	require.True(t, p.Submit("queued", types.AnalysisRecord{}))

	start := time.Now()
	assert.False(t, p.Submit("dropped", types.AnalysisRecord{}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(saver.release)
	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(2), saver.saved.Load())
}

func TestPersister_SubmitAfterShutdown(t *testing.T) {
	p := NewPersister(&countingSaver{}, PersisterConfig{})
	require.NoError(t, p.Shutdown(context.Background()))

	assert.False(t, p.Submit("late", types.AnalysisRecord{}))
	assert.NoError(t, p.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestPersister_ShutdownTimeoutCancelsSaves(t *testing.T) {
	saver := &countingSaver{release: make(chan struct{})}
	p := NewPersister(saver, PersisterConfig{Workers: 1, SaveTimeout: time.Hour})
	require.True(t, p.Submit("stuck", types.AnalysisRecord{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, saver.saved.Load())
}

func TestPersister_SaveTimeoutApplies(t *testing.T) {
	saver := &countingSaver{release: make(chan struct{})}
	p := NewPersister(saver, PersisterConfig{Workers: 1, SaveTimeout: 10 * time.Millisecond})
	require.True(t, p.Submit("slow", types.AnalysisRecord{}))

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Zero(t, saver.saved.Load())
}

func TestPersister_ShutdownDeadlineHoldsWithUncooperativeSaver(t *testing.T) {
	saver := &countingSaver{release: make(chan struct{}), ignoreCtx: true}
	p := NewPersister(saver, PersisterConfig{Workers: 1, SaveTimeout: time.Hour})
	require.True(t, p.Submit("stuck", types.AnalysisRecord{}))
	require.Eventually(t, func() bool { return p.Pending() == 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	// Let the worker finish so it exits before the leak check.
	close(saver.release)
	require.Eventually(t, func() bool { return saver.saved.Load() == 1 }, time.Second, time.Millisecond)
}
