package animation_tree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

type queuedCall struct {
	target Caller
	method string
	args   []variant.Variant
}

// MethodQueue is the default MethodSink: it holds calls until the host drains it, typically once
// per idle frame after every tree has been processed.
type MethodQueue struct {
	mu    sync.Mutex
	calls []queuedCall
}

var _ MethodSink = &MethodQueue{}

// NewMethodQueue creates an empty queue.
func NewMethodQueue() *MethodQueue {
	return &MethodQueue{}
}

func (q *MethodQueue) Push(target Caller, method string, args []variant.Variant) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, queuedCall{target: target, method: method, args: args})
}

// Len returns the number of queued calls.
func (q *MethodQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

// Drain runs every queued call in push order. Calls queued while draining run in the next Drain.
//
// Returns:
//   - error: the joined errors of every failed call
func (q *MethodQueue) Drain() error {
	q.mu.Lock()
	calls := q.calls
	q.calls = nil
	q.mu.Unlock()

	var errs []error
	for _, c := range calls {
		if err := c.target.Call(c.method, c.args); err != nil {
			errs = append(errs, fmt.Errorf("calling %s: %w", c.method, err))
		}
	}
	return errors.Join(errs...)
}
