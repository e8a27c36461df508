package engine

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// blockingExtractor holds each cycle inside Extract until released, so
// tests can keep a cycle in flight while starting another.
type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
	cycles  atomic.Int32
}

func (b *blockingExtractor) Extract(_ context.Context, _ domain.ProductConfig) domain.PriceReading {
	b.cycles.Add(1)
	b.started <- struct{}{}
	<-b.release
	return domain.PriceReading{Price: 100}
}

func TestNewScheduler_RegistersSingleEntry(t *testing.T) {
	t.Parallel()

	eng := testEngine(nil, &fakeExtractor{}, &fakeStore{}, &fakeNotifier{})

	sched, err := NewScheduler(eng, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.Len(t, sched.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	eng := testEngine(nil, &fakeExtractor{}, &fakeStore{}, &fakeNotifier{})

	sched, err := NewScheduler(eng, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sched.Start()
	next := sched.Entries()[0].Next
	assert.False(t, next.IsZero(), "a next run must be scheduled after Start")

	<-sched.Stop().Done()
}

func TestScheduler_RunNowNeverOverlaps(t *testing.T) {
	t.Parallel()

	ex := &blockingExtractor{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	st := &fakeStore{}
	products := []domain.ProductConfig{{Name: "A", URL: "https://a.example", Selector: ".p"}}
	eng := New(products, ex, st, &fakeNotifier{},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
	)

	sched, err := NewScheduler(eng, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sched.RunNow()
	<-ex.started

	// A second immediate cycle while the first is in flight must be
	// skipped, not queued and not run concurrently.
	sched.RunNow()
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ex.started, "second cycle must not start while the first is running")

	close(ex.release)
	<-sched.Stop().Done()

	assert.Equal(t, int32(1), ex.cycles.Load())
	assert.Len(t, st.saves, 1, "only the first cycle persists state")
}

func TestScheduler_StopWaitsForRunNow(t *testing.T) {
	t.Parallel()

	ex := &blockingExtractor{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	st := &fakeStore{}
	products := []domain.ProductConfig{{Name: "A", URL: "https://a.example", Selector: ".p"}}
	eng := New(products, ex, st, &fakeNotifier{},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
	)

	sched, err := NewScheduler(eng, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sched.RunNow()
	<-ex.started

	done := sched.Stop()
	select {
	case <-done.Done():
		t.Fatal("Stop must not complete while a cycle is still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(ex.release)
	<-done.Done()
	assert.Len(t, st.saves, 1, "the in-flight cycle persists state before Stop completes")
}
