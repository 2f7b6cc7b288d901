package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer flushes and stops the async handler on shutdown.
type Closer interface {
	Close()
}

// nopCloser is the Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples request handlers from log I/O: records go into a
// bounded channel and workers write them out. When the channel is full the
// record is counted and dropped, never queued unboundedly.
type AsyncHandler struct {
	inner   slog.Handler
	records chan slog.Record
	workers *sync.WaitGroup
	dropped *atomic.Int64
}

// NewAsyncHandler starts workerCount writers draining a channel of the
// given capacity into inner.
func NewAsyncHandler(inner slog.Handler, capacity, workerCount int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		records: make(chan slog.Record, capacity),
		workers: &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	for range workerCount {
		h.workers.Add(1)
		go func() {
			defer h.workers.Done()
			for rec := range h.records {
				_ = h.inner.Handle(context.Background(), rec)
			}
		}()
	}
	return h
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the channel is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.records <- rec:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs wraps a new inner handler; the channel, workers and drop
// counter are shared with the parent.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		records: h.records,
		workers: h.workers,
		dropped: h.dropped,
	}
}

// WithGroup wraps a new inner handler; see WithAttrs.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithGroup(name),
		records: h.records,
		workers: h.workers,
		dropped: h.dropped,
	}
}

// DroppedCount returns how many records were shed under load.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close drains remaining records and stops the workers. Records dropped
// during the process's lifetime are reported synchronously, since the
// async path is gone.
func (h *AsyncHandler) Close() {
	close(h.records)
	h.workers.Wait()
	if n := h.dropped.Load(); n > 0 {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "async logger dropped records under load", 0)
		rec.Add("count", n)
		_ = h.inner.Handle(context.Background(), rec)
	}
}
