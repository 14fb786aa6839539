package batch

import "log"

// BatchBuilderOption is a functional option for configuring a Batch.
type BatchBuilderOption func(b *Batch)

// WithWorkers sets the number of worker goroutines advancing trees.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - BatchBuilderOption: option function to apply
func WithWorkers(n int) BatchBuilderOption {
	return func(b *Batch) {
		if n < 1 {
			n = 1
		}
		b.workers = n
	}
}

// WithQueueSize sets how many pending trees the pool buffers before submission blocks.
//
// Parameters:
//   - n: the queue size (minimum 1)
//
// Returns:
//   - BatchBuilderOption: option function to apply
func WithQueueSize(n int) BatchBuilderOption {
	return func(b *Batch) {
		if n < 1 {
			n = 1
		}
		b.queue = n
	}
}

// WithLogger sets the logger for errors of attached batches. Defaults to log.Default().
func WithLogger(logger *log.Logger) BatchBuilderOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}
