package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/metrics"
	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/persistence"
)

const (
	defaultRetryDelay = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// SnapshotStatus reports the outcome of the latest saves.
type SnapshotStatus struct {
	Adapter     string     `json:"adapter"`
	Pending     bool       `json:"pending"`
	LastSavedAt *time.Time `json:"lastSavedAt"`
	LastError   string     `json:"lastError,omitempty"`
	LastErrorAt *time.Time `json:"lastErrorAt,omitempty"`
	Failures    int        `json:"failures"`
}

// SnapshotWorker writes the workbook to a persistence adapter in the
// background. Change notifications are coalesced: a burst of mutations
// within the debounce window produces a single save of the latest state.
type SnapshotWorker struct {
	port       persistence.Port
	snapshot   func() *model.AppState
	debounce   time.Duration
	retryDelay time.Duration
	signal     chan struct{}
	log        zerolog.Logger

	mu     sync.Mutex
	status SnapshotStatus
	// saveMu serialises adapter writes between the loop and SaveNow.
	saveMu sync.Mutex
}

// SnapshotOption customises a SnapshotWorker.
type SnapshotOption func(*SnapshotWorker)

// WithRetryDelay overrides the pause before retrying a failed save.
func WithRetryDelay(d time.Duration) SnapshotOption {
	return func(w *SnapshotWorker) { w.retryDelay = d }
}

// NewSnapshotWorker creates a SnapshotWorker saving snapshot() to port.
func NewSnapshotWorker(port persistence.Port, snapshot func() *model.AppState, debounce time.Duration, log zerolog.Logger, opts ...SnapshotOption) *SnapshotWorker {
	w := &SnapshotWorker{
		port:       port,
		snapshot:   snapshot,
		debounce:   debounce,
		retryDelay: defaultRetryDelay,
		signal:     make(chan struct{}, 1),
		log:        log.With().Str("component", "snapshot_worker").Str("adapter", port.Name()).Logger(),
		status:     SnapshotStatus{Adapter: port.Name()},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify marks the workbook dirty and wakes the worker. It never blocks.
func (w *SnapshotWorker) Notify() {
	w.mu.Lock()
	w.status.Pending = true
	w.mu.Unlock()
	w.kick()
}

func (w *SnapshotWorker) kick() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Start begins the worker loop. Call in a goroutine. On cancellation the
// pending snapshot, if any, is written before returning.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Dur("debounce", w.debounce).Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := w.flush(drainCtx); err != nil {
				w.log.Error().Err(err).Msg("Final save failed")
			}
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		case <-w.signal:
			if !sleep(ctx, w.debounce) {
				continue
			}
			if err := w.flush(ctx); err != nil {
				w.log.Warn().Err(err).Dur("retry_in", w.retryDelay).Msg("Save failed, will retry")
				if sleep(ctx, w.retryDelay) {
					w.kick()
				}
			}
		}
	}
}

// SaveNow writes the current workbook synchronously, whether or not it
// changed since the last save.
func (w *SnapshotWorker) SaveNow(ctx context.Context) error {
	w.mu.Lock()
	w.status.Pending = false
	w.mu.Unlock()
	return w.save(ctx)
}

// Status returns a copy of the latest save outcome.
func (w *SnapshotWorker) Status() SnapshotStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// flush saves only when a change is pending.
func (w *SnapshotWorker) flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.status.Pending {
		w.mu.Unlock()
		return nil
	}
	w.status.Pending = false
	w.mu.Unlock()
	return w.save(ctx)
}

func (w *SnapshotWorker) save(ctx context.Context) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	err := w.port.Save(ctx, w.snapshot())
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.status.Pending = true
		w.status.LastError = err.Error()
		w.status.LastErrorAt = &now
		w.status.Failures++
		metrics.PersistenceSaves.WithLabelValues(w.port.Name(), metrics.ResultError).Inc()
		return err
	}
	w.status.LastSavedAt = &now
	w.status.LastError = ""
	w.status.LastErrorAt = nil
	metrics.PersistenceSaves.WithLabelValues(w.port.Name(), metrics.ResultOK).Inc()
	w.log.Debug().Msg("Snapshot saved")
	return nil
}

// sleep waits for d or ctx cancellation and reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
