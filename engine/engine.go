package engine

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// TickKind names one of the two callbacks the engine drives.
type TickKind uint8

const (
	// TickPhysics fires at the fixed tick rate.
	TickPhysics TickKind = iota

	// TickIdle fires as often as the idle loop runs, optionally capped.
	TickIdle
)

func (k TickKind) String() string {
	switch k {
	case TickPhysics:
		return "physics"
	case TickIdle:
		return "idle"
	}
	return "unknown"
}

type subscription struct {
	kind TickKind
	fn   func(delta float64)
}

// engine implements the Engine interface.
// Coordinates the physics and idle loops.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	idleFrameLimit time.Duration // minimum idle frame duration; 0 = uncapped

	mu     sync.Mutex
	nextID int
	subs   map[int]subscription

	// stepMu keeps physics and idle callbacks from ever running at the same time.
	stepMu sync.Mutex

	logger *log.Logger
}

// Engine drives animation hosts without a window: a fixed rate physics loop and a free running
// idle loop, each calling the functions subscribed to it. Callbacks of both loops are serialized,
// so subscribers never run concurrently with each other.
type Engine interface {
	// EnableProfiler enables the per-interval profiler summary.
	EnableProfiler()

	// DisableProfiler disables the per-interval profiler summary.
	DisableProfiler()

	// Profiler returns the engine's profiler, which trees can report frames to.
	Profiler() *profiler.Profiler

	// SetTickRate sets the physics tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetIdleFrameLimit sets an optional idle frame rate cap in frames per second.
	// Pass 0 to uncap the idle loop (default).
	//
	// Parameters:
	//   - fps: maximum idle frames per second (0 = uncapped)
	SetIdleFrameLimit(fps float64)

	// Subscribe registers fn for the callback of kind. Subscribers run in subscription order.
	//
	// Parameters:
	//   - kind: the callback to follow
	//   - fn: the function to call with the delta time in seconds
	//
	// Returns:
	//   - int: the subscription id
	Subscribe(kind TickKind, fn func(delta float64)) int

	// Unsubscribe removes a subscription. Safe to call from inside a callback.
	//
	// Parameters:
	//   - id: the subscription id
	Unsubscribe(id int)

	// Step runs the callbacks of kind once with delta, on the calling goroutine. Tests and
	// deterministic hosts drive the engine through Step instead of Run. Must not be called from
	// inside a callback.
	//
	// Parameters:
	//   - kind: the callback to run
	//   - delta: the delta time in seconds
	Step(kind TickKind, delta float64)

	// Run starts the physics and idle loops and blocks until ctx is done or Quit is called.
	//
	// Parameters:
	//   - ctx: the context ending the run
	Run(ctx context.Context)

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		subs:            make(map[int]subscription),
		logger:          log.Default(),
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	return e
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Subscribe(kind TickKind, fn func(delta float64)) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.subs[e.nextID] = subscription{kind: kind, fn: fn}
	return e.nextID
}

func (e *engine) Unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, id)
}

// callbacks returns the functions subscribed to kind in subscription order.
func (e *engine) callbacks(kind TickKind) []func(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int, 0, len(e.subs))
	for id, s := range e.subs {
		if s.kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	fns := make([]func(delta float64), len(ids))
	for i, id := range ids {
		fns[i] = e.subs[id].fn
	}
	return fns
}

func (e *engine) Step(kind TickKind, delta float64) {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	for _, fn := range e.callbacks(kind) {
		fn(delta)
	}
	if kind == TickIdle && e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
}

func (e *engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.running.Store(true)
	defer e.running.Store(false)

	e.wg.Add(3)
	go e.handlePhysics(ctx)
	go e.handleIdle(ctx)
	go e.handleQuit(ctx, cancel)
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handlePhysics runs the fixed-rate physics loop in its own goroutine.
// Steps the physics callbacks at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the context is done.
func (e *engine) handlePhysics(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			e.safeStep(TickPhysics, dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleIdle runs the uncapped (or frame-limited) idle loop in its own goroutine.
func (e *engine) handleIdle(ctx context.Context) {
	defer e.wg.Done()

	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			now := time.Now()
			dt := now.Sub(lastFrame).Seconds()
			lastFrame = now

			e.safeStep(TickIdle, dt)

			// Frame rate limiting
			if e.idleFrameLimit > 0 {
				elapsed := time.Since(lastFrame)
				if remaining := e.idleFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// safeStep recovers from panics inside callbacks to avoid crashing the process and signals quit
// on recovery.
func (e *engine) safeStep(kind TickKind, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("[Engine] %s callback recovered from panic: %v", kind, r)
			e.Quit()
		}
	}()
	e.Step(kind, dt)
}

// handleQuit blocks until Quit is called or the context ends, then cancels the run.
func (e *engine) handleQuit(ctx context.Context, cancel context.CancelFunc) {
	defer e.wg.Done()
	select {
	case <-e.quitChannel:
		cancel()
	case <-ctx.Done():
	}
}

// EnableProfiler enables the per-interval profiler summary.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables the per-interval profiler summary.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the physics tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetIdleFrameLimit sets an optional idle frame rate cap.
// Pass 0 to uncap the idle loop.
func (e *engine) SetIdleFrameLimit(fps float64) {
	if fps <= 0 {
		e.idleFrameLimit = 0
		return
	}
	e.idleFrameLimit = time.Duration(float64(time.Second) / fps)
}
