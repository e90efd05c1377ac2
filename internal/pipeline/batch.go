package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default batch settings.
const (
	DefaultConcurrency = 6
	DefaultBatchSize   = 30
)

// ErrSkipped can be returned by an item function to count the item as
// skipped rather than failed.
var ErrSkipped = errors.New("skipped")

// BatchResult summarizes a batch run.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// add folds one item outcome into the result.
func (r *BatchResult) add(err error) {
	switch {
	case err == nil:
		r.Succeeded++
	case errors.Is(err, ErrSkipped):
		r.Skipped++
	default:
		r.Failed++
	}
}

// BatchProcessor processes items in fixed-size batches. Within a batch at
// most concurrency items run at once; the next batch starts when the current
// one is done.
type BatchProcessor[T any] struct {
	concurrency int
	batchSize   int
	logger      *slog.Logger
	name        func(T) string
	onItem      func(item T, err error)
}

// BatchOption configures a BatchProcessor.
type BatchOption[T any] func(*BatchProcessor[T])

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger[T any](logger *slog.Logger) BatchOption[T] {
	return func(b *BatchProcessor[T]) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of items processed at once.
func WithConcurrency[T any](n int) BatchOption[T] {
	return func(b *BatchProcessor[T]) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchSize sets how many items form one batch.
func WithBatchSize[T any](n int) BatchOption[T] {
	return func(b *BatchProcessor[T]) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithItemName sets how items are named in log lines.
func WithItemName[T any](name func(T) string) BatchOption[T] {
	return func(b *BatchProcessor[T]) {
		b.name = name
	}
}

// WithItemCallback is called after every item with its outcome. It may be
// called from several goroutines at once.
func WithItemCallback[T any](fn func(item T, err error)) BatchOption[T] {
	return func(b *BatchProcessor[T]) {
		b.onItem = fn
	}
}

// NewBatchProcessor creates a BatchProcessor with DefaultConcurrency and
// DefaultBatchSize unless overridden.
func NewBatchProcessor[T any](opts ...BatchOption[T]) *BatchProcessor[T] {
	bp := &BatchProcessor[T]{
		concurrency: DefaultConcurrency,
		batchSize:   DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Process runs fn for every item. Item errors are logged and counted, never
// returned; only context cancellation stops processing early.
func (bp *BatchProcessor[T]) Process(ctx context.Context, items []T, fn func(ctx context.Context, item T) error) (BatchResult, error) {
	start := time.Now()
	result := BatchResult{Total: len(items)}
	batches := (len(items) + bp.batchSize - 1) / bp.batchSize

	bp.logger.Info("starting batch processing",
		"items", len(items),
		"batches", batches,
		"batch_size", bp.batchSize,
		"concurrency", bp.concurrency,
	)

	var mu sync.Mutex
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		lo := b * bp.batchSize
		hi := min(lo+bp.batchSize, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(bp.concurrency)

		for _, item := range items[lo:hi] {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				err := fn(gctx, item)
				if err != nil && !errors.Is(err, ErrSkipped) {
					bp.logger.Warn("item failed",
						"item", bp.itemName(item),
						"error", err,
					)
				}

				mu.Lock()
				result.add(err)
				mu.Unlock()

				if bp.onItem != nil {
					bp.onItem(item, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		bp.logger.Info("batch complete",
			"batch", b+1,
			"of", batches,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"skipped", result.Skipped,
		)
	}

	result.Elapsed = time.Since(start)
	bp.logger.Info("batch processing complete",
		"items", len(items),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

func (bp *BatchProcessor[T]) itemName(item T) string {
	if bp.name == nil {
		return ""
	}
	return bp.name(item)
}
