// Package batch advances many independent animation trees per tick on a shared worker pool.
package batch

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation_tree"
)

// Batch owns a set of trees driven together. Trees of one batch must not share scene targets,
// since they are processed concurrently. Each tree should use ProcessManual so nothing else
// advances it.
type Batch struct {
	mu    sync.Mutex
	trees []animation_tree.AnimationTree

	// pool keeps a bounded set of goroutines alive across ticks.
	pool    worker.DynamicWorkerPool
	workers int
	queue   int

	logger *log.Logger
}

// NewBatch creates an empty batch.
// Worker count defaults to runtime.NumCPU()-1, minimum 1.
//
// Parameters:
//   - options: functional options to further configure the batch
//
// Returns:
//   - *Batch: the newly created batch
func NewBatch(options ...BatchBuilderOption) *Batch {
	b := &Batch{
		workers: max(runtime.NumCPU()-1, 1),
		queue:   256,
		logger:  log.Default(),
	}
	for _, opt := range options {
		opt(b)
	}

	// Created after the options so WithWorkers can override the default.
	b.pool = worker.NewDynamicWorkerPool(b.workers, b.queue, 1*time.Second)
	return b
}

// Add appends trees to the batch. A tree already in the batch is not added twice.
func (b *Batch) Add(trees ...animation_tree.AnimationTree) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range trees {
		if t != nil && b.index(t) < 0 {
			b.trees = append(b.trees, t)
		}
	}
}

// Remove drops tree from the batch.
//
// Parameters:
//   - tree: the tree to drop
//
// Returns:
//   - bool: false when tree was not in the batch
func (b *Batch) Remove(tree animation_tree.AnimationTree) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(tree)
	if i < 0 {
		return false
	}
	b.trees = append(b.trees[:i], b.trees[i+1:]...)
	return true
}

func (b *Batch) index(tree animation_tree.AnimationTree) int {
	for i, t := range b.trees {
		if t == tree {
			return i
		}
	}
	return -1
}

// Len returns the number of trees in the batch.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.trees)
}

// Workers returns the configured worker count.
func (b *Batch) Workers() int { return b.workers }

// Advance processes every tree once with delta and waits for all of them.
//
// Parameters:
//   - delta: the frame time in seconds
//
// Returns:
//   - error: the joined errors of every tree that failed, each prefixed with the tree's name
func (b *Batch) Advance(delta float64) error {
	b.mu.Lock()
	trees := make([]animation_tree.AnimationTree, len(b.trees))
	copy(trees, b.trees)
	b.mu.Unlock()

	// A WaitGroup is the per-tick barrier; the pool's own Wait only returns once workers idle out.
	errs := make([]error, len(trees))
	var wg sync.WaitGroup
	for i, t := range trees {
		wg.Add(1)
		idx, tree := i, t
		b.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				if err := tree.Advance(delta); err != nil {
					errs[idx] = fmt.Errorf("%s: %w", tree.Name(), err)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Attach advances the batch on every callback of kind from ticker. Errors are logged.
//
// Parameters:
//   - ticker: the callback source, usually the engine
//   - kind: the callback to follow
//
// Returns:
//   - int: the subscription id, for ticker.Unsubscribe
func (b *Batch) Attach(ticker animation_tree.Ticker, kind engine.TickKind) int {
	return ticker.Subscribe(kind, func(delta float64) {
		if err := b.Advance(delta); err != nil {
			b.logger.Printf("[Batch] %v", err)
		}
	})
}
