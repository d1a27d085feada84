package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/classbook-backend/internal/model"
)

type fakePort struct {
	mu       sync.Mutex
	saves    int
	failures int
	last     *model.AppState
}

func (f *fakePort) Name() string { return "fake" }

func (f *fakePort) Load(context.Context) (*model.AppState, bool, error) { return nil, false, nil }

func (f *fakePort) Save(_ context.Context, st *model.AppState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	f.saves++
	f.last = st
	return nil
}

func (f *fakePort) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func startWorker(t *testing.T, w *SnapshotWorker) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	return func() {
		stop()
		<-done
	}
}

func TestSnapshotWorkerCoalescesBursts(t *testing.T) {
	port := &fakePort{}
	version := 0
	var mu sync.Mutex
	snapshot := func() *model.AppState {
		mu.Lock()
		defer mu.Unlock()
		st := model.NewAppState()
		st.ICalURL = string(rune('a' + version))
		return st
	}
	w := NewSnapshotWorker(port, snapshot, 50*time.Millisecond, zerolog.Nop())
	stop := startWorker(t, w)
	defer stop()

	for i := 0; i < 10; i++ {
		mu.Lock()
		version = i
		mu.Unlock()
		w.Notify()
	}

	require.Eventually(t, func() bool { return port.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, port.count())
	assert.Equal(t, "j", port.last.ICalURL)
	assert.False(t, w.Status().Pending)
	assert.NotNil(t, w.Status().LastSavedAt)
}

func TestSnapshotWorkerRetriesFailures(t *testing.T) {
	port := &fakePort{failures: 2}
	w := NewSnapshotWorker(port, model.NewAppState, time.Millisecond, zerolog.Nop(), WithRetryDelay(10*time.Millisecond))
	stop := startWorker(t, w)
	defer stop()

	w.Notify()

	require.Eventually(t, func() bool { return port.count() == 1 }, time.Second, 5*time.Millisecond)
	status := w.Status()
	assert.Equal(t, 2, status.Failures)
	assert.Empty(t, status.LastError)
	assert.Equal(t, "fake", status.Adapter)
}

func TestSnapshotWorkerFlushesOnShutdown(t *testing.T) {
	port := &fakePort{}
	w := NewSnapshotWorker(port, model.NewAppState, time.Hour, zerolog.Nop())
	stop := startWorker(t, w)

	w.Notify()
	stop()

	assert.Equal(t, 1, port.count())
}

func TestSnapshotWorkerShutdownWithoutChanges(t *testing.T) {
	port := &fakePort{}
	stop := startWorker(t, NewSnapshotWorker(port, model.NewAppState, time.Hour, zerolog.Nop()))
	stop()
	assert.Zero(t, port.count())
}

func TestSaveNow(t *testing.T) {
	port := &fakePort{failures: 1}
	w := NewSnapshotWorker(port, model.NewAppState, time.Hour, zerolog.Nop())

	err := w.SaveNow(context.Background())
	require.Error(t, err)
	status := w.Status()
	assert.True(t, status.Pending)
	assert.Equal(t, "disk full", status.LastError)
	assert.NotNil(t, status.LastErrorAt)

	require.NoError(t, w.SaveNow(context.Background()))
	status = w.Status()
	assert.False(t, status.Pending)
	assert.Empty(t, status.LastError)
	assert.Equal(t, 1, port.count())
}
