package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStepRunsSubscribersInOrder(t *testing.T) {
	e := NewEngine()
	var got []string
	e.Subscribe(TickIdle, func(float64) { got = append(got, "a") })
	e.Subscribe(TickPhysics, func(float64) { got = append(got, "physics") })
	e.Subscribe(TickIdle, func(float64) { got = append(got, "b") })

	e.Step(TickIdle, 0.016)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("idle step ran %v, want [a b]", got)
	}

	got = nil
	e.Step(TickPhysics, 0.016)
	if len(got) != 1 || got[0] != "physics" {
		t.Fatalf("physics step ran %v", got)
	}
}

func TestStepPassesDelta(t *testing.T) {
	e := NewEngine()
	var delta float64
	e.Subscribe(TickPhysics, func(d float64) { delta = d })
	e.Step(TickPhysics, 0.25)
	if delta != 0.25 {
		t.Errorf("delta = %v, want 0.25", delta)
	}
}

func TestUnsubscribeInsideCallback(t *testing.T) {
	e := NewEngine()
	calls := 0
	var id int
	id = e.Subscribe(TickIdle, func(float64) {
		calls++
		e.Unsubscribe(id)
	})
	e.Step(TickIdle, 0)
	e.Step(TickIdle, 0)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunSerializesCallbacks(t *testing.T) {
	e := NewEngine(WithTickRate(1000), WithIdleFrameLimit(1000))

	var inside atomic.Int32
	var overlap atomic.Bool
	var physics, idle atomic.Int32
	track := func(counter *atomic.Int32) func(float64) {
		return func(float64) {
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			counter.Add(1)
			time.Sleep(100 * time.Microsecond)
			inside.Add(-1)
		}
	}
	e.Subscribe(TickPhysics, track(&physics))
	e.Subscribe(TickIdle, track(&idle))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	if overlap.Load() {
		t.Error("physics and idle callbacks overlapped")
	}
	if physics.Load() == 0 || idle.Load() == 0 {
		t.Errorf("physics = %d, idle = %d, want both > 0", physics.Load(), idle.Load())
	}
}

func TestQuitStopsRun(t *testing.T) {
	e := NewEngine(WithIdleFrameLimit(500))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Run(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)
	e.Quit()
	e.Quit()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestPanicInCallbackQuits(t *testing.T) {
	e := NewEngine(WithIdleFrameLimit(500))
	e.Subscribe(TickIdle, func(float64) { panic("boom") })

	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a panicking callback")
	}
}
