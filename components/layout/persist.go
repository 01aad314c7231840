package layout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const (
	defaultFlushDelay = 500 * time.Millisecond
	defaultMaxRetries = 5
	defaultRetryBase  = 250 * time.Millisecond
)

// writeBehind coalesces field writes: rapid successive updates to the same
// key collapse into the last value, flushed after a quiet period. Failures
// retry with backoff in the background and never surface to callers beyond
// telemetry.
type writeBehind struct {
	backend    Backend
	mode       Mode
	telemetry  Telemetry
	delay      time.Duration
	maxRetries int
	retryBase  time.Duration

	mu      sync.Mutex
	pending map[string]json.RawMessage
	timer   *time.Timer
	closed  bool
	wg      sync.WaitGroup
}

func newWriteBehind(backend Backend, mode Mode, telemetry Telemetry, delay time.Duration, maxRetries int, retryBase time.Duration) *writeBehind {
	if delay <= 0 {
		delay = defaultFlushDelay
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &writeBehind{
		backend:    backend,
		mode:       mode,
		telemetry:  normalizeTelemetry(telemetry),
		delay:      delay,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		pending:    map[string]json.RawMessage{},
	}
}

func (w *writeBehind) readAll(ctx context.Context) (map[string]json.RawMessage, error) {
	if w.backend == nil {
		return map[string]json.RawMessage{}, nil
	}
	return w.backend.ReadAll(ctx, w.mode)
}

func (w *writeBehind) enqueue(key string, value json.RawMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.backend == nil {
		return
	}
	w.pending[key] = value
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		w.wg.Add(1)
		defer w.wg.Done()
		w.flush(context.Background())
	})
}

// Flush drains pending writes synchronously.
func (w *writeBehind) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.flush(ctx)
}

func (w *writeBehind) flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = map[string]json.RawMessage{}
	w.mu.Unlock()
	if len(batch) == 0 || w.backend == nil {
		return nil
	}
	var errs error
	for key, value := range batch {
		if err := w.writeWithRetry(ctx, key, value); err != nil {
			errs = errors.Join(errs, err)
			w.telemetry.Record(ctx, "layout.persist.failed", map[string]any{
				"mode": string(w.mode), "key": key, "error": err.Error(),
			})
		}
	}
	return errs
}

func (w *writeBehind) writeWithRetry(ctx context.Context, key string, value json.RawMessage) error {
	backoff := w.retryBase
	var last error
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(last, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if last = w.backend.Write(ctx, w.mode, key, value); last == nil {
			return nil
		}
	}
	return last
}

// Close performs a final drain and stops accepting writes.
func (w *writeBehind) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
	return w.flush(context.Background())
}
