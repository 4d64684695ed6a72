package event

import (
	"log"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Writer wraps the async WriteAPI and tracks the last write error for
// /healthz and /readyz.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter initializes the writer and starts the listener for Influx's
// asynchronous write errors.
func NewWriter(w api.WriteAPI) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour), // "long ago" by default
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				ww.mu.Lock()
				ww.lastErr = time.Now()
				ww.mu.Unlock()
				log.Printf("influx write error: %v", err)
			}
		}
	}()
	return ww
}

// LastErrorAge reports how long writes have gone without an error.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// MarkIngest bumps an internal per-event-type counter, useful when debugging.
func (w *Writer) MarkIngest(eventType string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.counts[eventType]++
	w.mu.Unlock()
}

// Count reads the counter for an event type.
func (w *Writer) Count(eventType string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[eventType]
	w.mu.RUnlock()
	return c
}

// Counts snapshots every per-event-type counter, for the health endpoint.
func (w *Writer) Counts() map[string]int64 {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int64, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}
