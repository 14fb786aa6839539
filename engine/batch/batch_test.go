package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation/nodes"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation_tree"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/player"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

var quiet = log.New(io.Discard, "", 0)

// character builds its own scene with a ramp clip moving Body along x.
func character(t *testing.T, name string, withRoot bool) (animation_tree.AnimationTree, scene.Node3D) {
	t.Helper()
	ramp := clip.NewClip("ramp", 1, clip.WithPositionTrack("Body",
		clip.VectorKey{Time: 0, Value: r3.Vec{}},
		clip.VectorKey{Time: 1, Value: r3.Vec{X: 1}},
	))
	opts := []animation_tree.AnimationTreeBuilderOption{
		animation_tree.WithPlayerPath("../AnimationPlayer"),
		animation_tree.WithProcessCallback(animation_tree.ProcessManual),
		animation_tree.WithLogger(quiet),
	}
	if withRoot {
		opts = append(opts, animation_tree.WithTreeRoot(nodes.NewAnimation("ramp")))
	}
	tree := animation_tree.NewAnimationTree(name, opts...)
	body := scene.NewNode3D("Body")
	char := scene.NewNode3D("Character")
	for _, n := range []scene.Node{player.NewAnimationPlayer("AnimationPlayer", player.WithAnimations(ramp)), tree, body} {
		if err := char.AddChild(n); err != nil {
			t.Fatal(err)
		}
	}
	scene.NewScene(name, scene.WithChildren(char), scene.WithLogger(quiet))
	return tree, body
}

func TestAdvanceAllTrees(t *testing.T) {
	b := NewBatch(WithWorkers(3), WithLogger(quiet))
	var bodies []scene.Node3D
	for i := 0; i < 12; i++ {
		tree, body := character(t, fmt.Sprintf("tree%d", i), true)
		b.Add(tree)
		bodies = append(bodies, body)
	}
	if b.Len() != 12 || b.Workers() != 3 {
		t.Fatalf("Len = %d, Workers = %d", b.Len(), b.Workers())
	}

	for i := 0; i < 3; i++ {
		if err := b.Advance(0.25); err != nil {
			t.Fatal(err)
		}
	}
	for i, body := range bodies {
		if x := body.Position().X; math.Abs(x-0.75) > 1e-6 {
			t.Errorf("body %d at x=%v, want 0.75", i, x)
		}
	}
}

func TestAdvanceJoinsErrors(t *testing.T) {
	b := NewBatch(WithWorkers(2), WithLogger(quiet))
	good, body := character(t, "good", true)
	bad, _ := character(t, "bad", false)
	b.Add(good, bad, good)
	if b.Len() != 2 {
		t.Fatalf("duplicate tree added, Len = %d", b.Len())
	}

	err := b.Advance(0.5)
	if !errors.Is(err, animation_tree.ErrNoRoot) {
		t.Fatalf("Advance = %v, want ErrNoRoot", err)
	}
	if !strings.Contains(err.Error(), "bad:") {
		t.Errorf("error does not name the tree: %v", err)
	}
	if x := body.Position().X; math.Abs(x-0.5) > 1e-6 {
		t.Errorf("healthy tree not advanced, x=%v", x)
	}

	if !b.Remove(bad) || b.Remove(bad) {
		t.Error("Remove should succeed once")
	}
	if err := b.Advance(0.1); err != nil {
		t.Errorf("Advance after removal = %v", err)
	}
}

func TestAttachFollowsEngine(t *testing.T) {
	var logs bytes.Buffer
	b := NewBatch(WithWorkers(2), WithLogger(log.New(&logs, "", 0)))
	good, body := character(t, "good", true)
	bad, _ := character(t, "bad", false)
	b.Add(good, bad)

	eng := engine.NewEngine(engine.WithLogger(quiet))
	id := b.Attach(eng, engine.TickPhysics)
	eng.Step(engine.TickPhysics, 0.2)
	if x := body.Position().X; math.Abs(x-0.2) > 1e-6 {
		t.Errorf("x = %v after one physics tick", x)
	}
	if !strings.Contains(logs.String(), "[Batch]") {
		t.Errorf("tree error not logged: %q", logs.String())
	}

	eng.Unsubscribe(id)
	eng.Step(engine.TickPhysics, 0.2)
	if x := body.Position().X; math.Abs(x-0.2) > 1e-6 {
		t.Errorf("detached batch still advanced, x = %v", x)
	}
}
