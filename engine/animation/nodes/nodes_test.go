package nodes

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

type library map[string]clip.Clip

func (l library) HasAnimation(name string) bool {
	_, ok := l[name]
	return ok
}

func (l library) Animation(name string) (clip.Clip, bool) {
	c, ok := l[name]
	return c, ok
}

// harness runs a graph without a scene: it owns the parameter plane and the frame state.
type harness struct {
	root   animation.Node
	state  *animation.State
	values map[string]variant.Variant
}

func newHarness(root animation.Node, clips library, paths ...string) *harness {
	h := &harness{root: root, values: map[string]variant.Variant{}}
	h.state = animation.NewState(clips, h)
	for i, p := range paths {
		h.state.TrackMap[p] = i
	}
	h.state.TrackCount = len(paths)
	h.declare(root, "parameters/")
	return h
}

func (h *harness) declare(n animation.Node, base string) {
	for _, p := range n.Parameters() {
		if _, ok := h.values[base+p.Name]; !ok {
			h.values[base+p.Name] = p.Default
		}
	}
	for _, c := range n.Children() {
		h.declare(c.Node, base+c.Name+"/")
	}
}

func (h *harness) Parameter(base, name string) variant.Variant { return h.values[base+name] }

func (h *harness) SetParameter(base, name string, v variant.Variant) {
	if _, ok := h.values[base+name]; ok {
		h.values[base+name] = v
	}
}

func (h *harness) RecordActivity(string, int, float64, uint64) {}

func (h *harness) frame(time float64, seek bool) float64 {
	h.state.Pass++
	h.state.Reset()
	animation.ResetWeights(h.root, h.state.TrackCount, 1)
	return animation.Run(h.state, h.root, "parameters/", time, seek, false)
}

func (h *harness) float(path string) float64 { return h.values[path].AsFloat() }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// weight returns the first target weight of n, 0 before n was ever processed.
func weight(n animation.Node) float64 {
	if w := n.Weights(); len(w) > 0 {
		return w[0]
	}
	return 0
}

func clipWithLoop(name string, length float64, mode clip.LoopMode) clip.Clip {
	return clip.NewClip(name, length, clip.WithLoopMode(mode),
		clip.WithPositionTrack("Body", clip.VectorKey{Time: 0, Value: r3.Vec{}}))
}

func TestAnimationLoopModes(t *testing.T) {
	tests := []struct {
		name      string
		mode      clip.LoopMode
		steps     []float64
		wantTime  float64
		wantDelta float64
		wantPing  int
	}{
		{"linear wraps", clip.LoopLinear, []float64{0.75, 0.5}, 0.25, 0.5, 0},
		{"none clamps", clip.LoopNone, []float64{0.75, 0.5}, 1, 0.25, 0},
		{"pingpong reflects at end", clip.LoopPingPong, []float64{0.75, 0.5}, 0.75, 0.5, 1},
		{"pingpong runs backward", clip.LoopPingPong, []float64{0.75, 0.5, 0.5}, 0.25, -0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf := NewAnimation("a")
			h := newHarness(leaf, library{"a": clipWithLoop("a", 1, tt.mode)}, "Body")
			for _, s := range tt.steps {
				h.frame(s, false)
			}
			if !h.state.Valid || len(h.state.Records) != 1 {
				t.Fatalf("valid=%v records=%d", h.state.Valid, len(h.state.Records))
			}
			r := h.state.Records[0]
			if !approx(r.Time, tt.wantTime) || !approx(r.Delta, tt.wantDelta) || r.Pingponged != tt.wantPing {
				t.Errorf("record time=%v delta=%v ping=%d, want %v %v %d", r.Time, r.Delta, r.Pingponged, tt.wantTime, tt.wantDelta, tt.wantPing)
			}
		})
	}
}

func TestAnimationBackwardPlayMode(t *testing.T) {
	leaf := NewAnimation("a")
	leaf.SetPlayMode(PlayBackward)
	h := newHarness(leaf, library{"a": clipWithLoop("a", 2, clip.LoopNone)}, "Body")
	rem := h.frame(0.5, false)
	r := h.state.Records[0]
	if !approx(r.Time, 1.5) || !approx(r.Delta, -0.5) || !approx(rem, 1.5) {
		t.Errorf("time=%v delta=%v rem=%v", r.Time, r.Delta, rem)
	}
	if !approx(h.float("parameters/time"), 0.5) {
		t.Errorf("time parameter = %v", h.float("parameters/time"))
	}
}

func TestAnimationNotFound(t *testing.T) {
	tree := NewBlendTree()
	if err := tree.AddNode("walk", NewAnimation("missing"), vec.Vec2{}); err != nil {
		t.Fatal(err)
	}
	if err := tree.ConnectNode(OutputName, 0, "walk"); err != nil {
		t.Fatal(err)
	}
	h := newHarness(tree, library{})
	h.frame(0.1, false)
	want := "•  On BlendTree node 'walk', animation not found: 'missing'"
	if h.state.Valid || h.state.InvalidReasons != want {
		t.Errorf("reasons = %q, want %q", h.state.InvalidReasons, want)
	}

	h = newHarness(NewAnimation("missing"), library{})
	h.frame(0.1, false)
	if h.state.InvalidReasons != "•  Animation not found: 'missing'" {
		t.Errorf("reasons = %q", h.state.InvalidReasons)
	}
}

func mixTree(t *testing.T) (*BlendTree, *Animation, *Animation, *Blend2) {
	t.Helper()
	tree := NewBlendTree()
	a, b, mix := NewAnimation("a"), NewAnimation("b"), NewBlend2()
	for name, n := range map[string]animation.Node{"a": a, "b": b, "mix": mix} {
		if err := tree.AddNode(name, n, vec.Vec2{}); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range []struct {
		dst   string
		input int
		src   string
	}{{"mix", 0, "a"}, {"mix", 1, "b"}, {OutputName, 0, "mix"}} {
		if err := tree.ConnectNode(c.dst, c.input, c.src); err != nil {
			t.Fatalf("connect %s:%d <- %s: %v", c.dst, c.input, c.src, err)
		}
	}
	return tree, a, b, mix
}

func TestBlendTreeConnections(t *testing.T) {
	tree, _, _, _ := mixTree(t)

	tests := []struct {
		dst   string
		input int
		src   string
		want  error
	}{
		{"mix", 0, OutputName, ErrNoOutput},
		{"mix", 0, "ghost", ErrNoOutput},
		{"ghost", 0, "a", ErrNodeNotFound},
		{"mix", 0, "mix", ErrSameNode},
		{"mix", 5, "a", ErrNoInputIndex},
		{"mix", 0, "b", ErrConnectionExists},
	}
	for _, tt := range tests {
		if err := tree.CanConnect(tt.dst, tt.input, tt.src); !errors.Is(err, tt.want) {
			t.Errorf("CanConnect(%s, %d, %s) = %v, want %v", tt.dst, tt.input, tt.src, err, tt.want)
		}
	}

	if err := tree.RemoveNode(OutputName); !errors.Is(err, ErrOutputNode) {
		t.Errorf("RemoveNode(output) = %v", err)
	}
	if err := tree.AddNode("bad/name", NewAnimation("a"), vec.Vec2{}); !errors.Is(err, ErrNodeName) {
		t.Errorf("AddNode(bad/name) = %v", err)
	}
	if err := tree.RenameNode("a", "walk"); err != nil {
		t.Fatal(err)
	}
	if got := tree.NodeConnections("mix"); got[0] != "walk" || got[1] != "b" {
		t.Errorf("connections after rename = %v", got)
	}
	if err := tree.RemoveNode("walk"); err != nil {
		t.Fatal(err)
	}
	if got := tree.NodeConnections("mix"); got[0] != "" {
		t.Errorf("connections after remove = %v", got)
	}
	names := tree.NodeList()
	if len(names) != 3 || names[0] != "b" || names[1] != "mix" || names[2] != OutputName {
		t.Errorf("NodeList = %v", names)
	}
}

func TestBlendTreeMissingInput(t *testing.T) {
	tree, _, _, _ := mixTree(t)
	tree.DisconnectNode("mix", 1)
	h := newHarness(tree, library{"a": clipWithLoop("a", 1, clip.LoopLinear), "b": clipWithLoop("b", 1, clip.LoopLinear)}, "Body")
	h.frame(0.1, false)
	want := "•  Nothing connected to input 'blend' of node 'mix'."
	if h.state.Valid || h.state.InvalidReasons != want {
		t.Errorf("reasons = %q, want %q", h.state.InvalidReasons, want)
	}
}

func TestBlend2Filter(t *testing.T) {
	tree, a, b, mix := mixTree(t)
	mix.SetFilterEnabled(true)
	mix.SetFilterPath("target:bone_leg", true)
	clips := library{"a": clipWithLoop("a", 1, clip.LoopLinear), "b": clipWithLoop("b", 1, clip.LoopLinear)}
	h := newHarness(tree, clips, "target:bone_arm", "target:bone_leg")
	h.values["parameters/mix/blend_amount"] = variant.Float(0.25)

	h.frame(0.1, false)
	if !h.state.Valid {
		t.Fatalf("invalid: %s", h.state.InvalidReasons)
	}
	wa, wb := a.Weights(), b.Weights()
	if !approx(wa[0], 1) || !approx(wb[0], 0) {
		t.Errorf("arm weights a=%v b=%v, want 1 and 0", wa[0], wb[0])
	}
	if !approx(wa[1], 0.75) || !approx(wb[1], 0.25) {
		t.Errorf("leg weights a=%v b=%v, want 0.75 and 0.25", wa[1], wb[1])
	}
	if !approx(h.float("parameters/a/time"), 0.1) || !approx(h.float("parameters/b/time"), 0.1) {
		t.Errorf("times a=%v b=%v", h.float("parameters/a/time"), h.float("parameters/b/time"))
	}
}

func TestBlend2WithoutSyncHoldsIdleInput(t *testing.T) {
	tree, _, _, _ := mixTree(t)
	clips := library{"a": clipWithLoop("a", 1, clip.LoopLinear), "b": clipWithLoop("b", 1, clip.LoopLinear)}
	h := newHarness(tree, clips, "Body")
	h.frame(0.1, false)
	if !approx(h.float("parameters/b/time"), 0) {
		t.Errorf("idle input advanced to %v", h.float("parameters/b/time"))
	}

	tree.Node("mix").(*Blend2).SetSync(true)
	h.frame(0.1, false)
	if !approx(h.float("parameters/b/time"), 0.1) {
		t.Errorf("synced idle input at %v, want 0.1", h.float("parameters/b/time"))
	}
}

func TestBlend3AndAdd(t *testing.T) {
	tree := NewBlendTree()
	lo, mid, hi := NewAnimation("a"), NewAnimation("a"), NewAnimation("a")
	b3 := NewBlend3()
	for name, n := range map[string]animation.Node{"lo": lo, "mid": mid, "hi": hi, "b3": b3} {
		_ = tree.AddNode(name, n, vec.Vec2{})
	}
	_ = tree.ConnectNode("b3", 0, "lo")
	_ = tree.ConnectNode("b3", 1, "mid")
	_ = tree.ConnectNode("b3", 2, "hi")
	_ = tree.ConnectNode(OutputName, 0, "b3")

	h := newHarness(tree, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")
	h.values["parameters/b3/blend_amount"] = variant.Float(-0.25)
	h.frame(0.1, false)
	if !approx(weight(lo), 0.25) || !approx(weight(mid), 0.75) || !approx(weight(hi), 0) {
		t.Errorf("weights lo=%v mid=%v hi=%v", lo.Weights(), mid.Weights(), hi.Weights())
	}

	addTree := NewBlendTree()
	base, layer, add := NewAnimation("a"), NewAnimation("a"), NewAdd2()
	_ = addTree.AddNode("base", base, vec.Vec2{})
	_ = addTree.AddNode("layer", layer, vec.Vec2{})
	_ = addTree.AddNode("add", add, vec.Vec2{})
	_ = addTree.ConnectNode("add", 0, "base")
	_ = addTree.ConnectNode("add", 1, "layer")
	_ = addTree.ConnectNode(OutputName, 0, "add")
	h = newHarness(addTree, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")
	h.values["parameters/add/add_amount"] = variant.Float(0.5)
	h.frame(0.1, false)
	if !approx(weight(base), 1) || !approx(weight(layer), 0.5) {
		t.Errorf("add weights base=%v layer=%v", base.Weights(), layer.Weights())
	}
}

// layerTree wires leaves of clip "a" into the inputs of mixer, in order, and mixer into the output.
func layerTree(t *testing.T, mixer animation.Node, names ...string) (*BlendTree, []*Animation) {
	t.Helper()
	tree := NewBlendTree()
	if err := tree.AddNode("mixer", mixer, vec.Vec2{}); err != nil {
		t.Fatal(err)
	}
	leaves := make([]*Animation, len(names))
	for i, name := range names {
		leaves[i] = NewAnimation("a")
		if err := tree.AddNode(name, leaves[i], vec.Vec2{}); err != nil {
			t.Fatal(err)
		}
		if err := tree.ConnectNode("mixer", i, name); err != nil {
			t.Fatal(err)
		}
	}
	if err := tree.ConnectNode(OutputName, 0, "mixer"); err != nil {
		t.Fatal(err)
	}
	return tree, leaves
}

func TestAdd3PicksLayerBySign(t *testing.T) {
	tree, leaves := layerTree(t, NewAdd3(), "minus", "base", "plus")
	minus, base, plus := leaves[0], leaves[1], leaves[2]
	h := newHarness(tree, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")

	tests := []struct {
		amount                float64
		wantMinus, wantPlus   float64
		wantMinusT, wantPlusT float64
	}{
		{-0.5, 0.5, 0, 0.1, 0},
		{0.75, 0, 0.75, 0.1, 0.1},
	}
	for _, tt := range tests {
		h.values["parameters/mixer/add_amount"] = variant.Float(tt.amount)
		h.frame(0.1, false)
		if !approx(weight(minus), tt.wantMinus) || !approx(weight(base), 1) || !approx(weight(plus), tt.wantPlus) {
			t.Errorf("amount %v: weights -add=%v in=%v +add=%v", tt.amount, weight(minus), weight(base), weight(plus))
		}
		if got := h.float("parameters/minus/time"); !approx(got, tt.wantMinusT) {
			t.Errorf("amount %v: -add time = %v, want %v", tt.amount, got, tt.wantMinusT)
		}
		if got := h.float("parameters/plus/time"); !approx(got, tt.wantPlusT) {
			t.Errorf("amount %v: +add time = %v, want %v", tt.amount, got, tt.wantPlusT)
		}
	}
}

func TestSub2NegativeWeightHoldsInput(t *testing.T) {
	tree, leaves := layerTree(t, NewSub2(), "base", "layer")
	base, layer := leaves[0], leaves[1]
	h := newHarness(tree, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")
	h.values["parameters/mixer/sub_amount"] = variant.Float(0.5)

	h.frame(0.1, false)
	if !approx(weight(base), 1) || !approx(weight(layer), -0.5) {
		t.Errorf("weights in=%v sub=%v, want 1 and -0.5", weight(base), weight(layer))
	}
	// A negative weight never counts as live, so without sync the sub input stays parked at 0.
	if got := h.float("parameters/layer/time"); !approx(got, 0) {
		t.Errorf("sub time = %v without sync, want 0", got)
	}
	if got := h.float("parameters/base/time"); !approx(got, 0.1) {
		t.Errorf("in time = %v, want 0.1", got)
	}
	for _, r := range h.state.Records {
		if r.Path == "parameters/layer/" && !approx(r.TrackBlends[0]*r.Blend, -0.5) {
			t.Errorf("sub record blend = %v, want -0.5", r.TrackBlends[0]*r.Blend)
		}
	}

	tree.Node("mixer").(*Sub2).SetSync(true)
	h.frame(0.1, false)
	if got := h.float("parameters/layer/time"); !approx(got, 0.1) {
		t.Errorf("synced sub time = %v, want 0.1", got)
	}
}

func oneShotTree(t *testing.T, shotLen float64, options ...OneShotBuilderOption) (*harness, *Animation, *Animation) {
	t.Helper()
	tree := NewBlendTree()
	main, shot, os := NewAnimation("idle"), NewAnimation("shot"), NewOneShot(options...)
	_ = tree.AddNode("main", main, vec.Vec2{})
	_ = tree.AddNode("shot", shot, vec.Vec2{})
	_ = tree.AddNode("os", os, vec.Vec2{})
	_ = tree.ConnectNode("os", 0, "main")
	_ = tree.ConnectNode("os", 1, "shot")
	_ = tree.ConnectNode(OutputName, 0, "os")
	clips := library{"idle": clipWithLoop("idle", 1, clip.LoopLinear), "shot": clipWithLoop("shot", shotLen, clip.LoopNone)}
	return newHarness(tree, clips, "Body"), main, shot
}

func TestOneShotFiresAndEnds(t *testing.T) {
	h, main, shot := oneShotTree(t, 1, WithFadeIn(0.5, ease.Linear), WithFadeOut(0, nil))

	h.frame(0.1, false)
	if !approx(weight(main), 1) || !approx(weight(shot), 0) {
		t.Fatalf("inactive weights main=%v shot=%v", main.Weights(), shot.Weights())
	}

	h.values["parameters/os/active"] = variant.Bool(true)
	h.frame(0.1, false)
	if !approx(weight(shot), 0) || !approx(h.float("parameters/os/time"), 0.1) {
		t.Errorf("start frame shot weight=%v time=%v", weight(shot), h.float("parameters/os/time"))
	}
	h.frame(0.15, false)
	if !approx(weight(shot), 0.2) || !approx(weight(main), 0.8) {
		t.Errorf("fading weights main=%v shot=%v", main.Weights(), shot.Weights())
	}

	h.frame(1, false)
	if h.values["parameters/os/active"].AsBool() {
		t.Errorf("one-shot still active after its clip ended")
	}
}

func TestOneShotAutorestart(t *testing.T) {
	h, _, _ := oneShotTree(t, 0.2, WithFadeIn(0, nil), WithFadeOut(0, nil), WithAutorestart(0.5, 0))
	h.values["parameters/os/active"] = variant.Bool(true)
	h.frame(0.1, false)
	h.frame(0.3, false)
	if h.values["parameters/os/active"].AsBool() || !approx(h.float("parameters/os/time_to_restart"), 0.5) {
		t.Fatalf("active=%v restart=%v", h.values["parameters/os/active"], h.float("parameters/os/time_to_restart"))
	}
	h.frame(0.6, false)
	if !h.values["parameters/os/active"].AsBool() {
		t.Errorf("one-shot did not restart")
	}
}

func TestTimeScaleAndSeek(t *testing.T) {
	tree := NewBlendTree()
	leaf, scale, seek := NewAnimation("a"), NewTimeScale(), NewTimeSeek()
	_ = tree.AddNode("leaf", leaf, vec.Vec2{})
	_ = tree.AddNode("scale", scale, vec.Vec2{})
	_ = tree.AddNode("seek", seek, vec.Vec2{})
	_ = tree.ConnectNode("scale", 0, "leaf")
	_ = tree.ConnectNode("seek", 0, "scale")
	_ = tree.ConnectNode(OutputName, 0, "seek")

	h := newHarness(tree, library{"a": clipWithLoop("a", 10, clip.LoopNone)}, "Body")
	h.values["parameters/scale/scale"] = variant.Float(2)
	h.frame(0.5, false)
	if !approx(h.float("parameters/leaf/time"), 1) {
		t.Errorf("scaled time = %v, want 1", h.float("parameters/leaf/time"))
	}

	h.values["parameters/seek/seek_request"] = variant.Float(4)
	h.frame(0.5, false)
	if !approx(h.float("parameters/leaf/time"), 4) || !h.state.Records[0].Seeked || !h.state.Records[0].SeekRoot {
		t.Errorf("seek time = %v record=%+v", h.float("parameters/leaf/time"), h.state.Records[0])
	}
	if !approx(h.float("parameters/seek/seek_request"), -1) {
		t.Errorf("seek request not reset")
	}
}

func TestTransitionCrossFade(t *testing.T) {
	tree := NewBlendTree()
	idle, run := NewAnimation("a"), NewAnimation("a")
	tr := NewTransition(WithInputs("idle", "run"), WithXFade(0.4, nil))
	_ = tree.AddNode("idle", idle, vec.Vec2{})
	_ = tree.AddNode("run", run, vec.Vec2{})
	_ = tree.AddNode("state", tr, vec.Vec2{})
	if err := tree.ConnectNode("state", 1, "run"); err != nil {
		t.Fatal(err)
	}
	_ = tree.ConnectNode("state", 0, "idle")
	_ = tree.ConnectNode(OutputName, 0, "state")

	h := newHarness(tree, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")
	if got := h.values["parameters/state/current_state"].AsString(); got != "idle" {
		t.Errorf("default state = %q", got)
	}
	h.frame(0.1, false)
	if !approx(weight(idle), 1) {
		t.Errorf("idle weight = %v", idle.Weights())
	}

	h.values["parameters/state/transition_request"] = variant.String("run")
	h.frame(0.1, false)
	if h.values["parameters/state/current_state"].AsString() != "run" || h.values["parameters/state/prev_index"].AsInt() != 0 {
		t.Errorf("state=%v prev=%v", h.values["parameters/state/current_state"], h.values["parameters/state/prev_index"])
	}
	h.frame(0.1, false)
	// 0.3 of 0.4 seconds of fade remain.
	if !approx(weight(idle), 0.75) || !approx(weight(run), 0.25) {
		t.Errorf("fade weights idle=%v run=%v", idle.Weights(), run.Weights())
	}
	h.frame(0.5, false)
	h.frame(0.1, false)
	if h.values["parameters/state/prev_index"].AsInt() != -1 || !approx(weight(run), 1) {
		t.Errorf("fade did not finish: prev=%v run=%v", h.values["parameters/state/prev_index"], run.Weights())
	}
}

func TestBlendSpace1D(t *testing.T) {
	bs := NewBlendSpace1D()
	walk, run, sprint := NewAnimation("a"), NewAnimation("a"), NewAnimation("a")
	bs.AddBlendPoint(walk, 0)
	bs.AddBlendPoint(run, 1)
	bs.AddBlendPoint(sprint, 2)
	h := newHarness(bs, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")

	tests := []struct {
		pos  float64
		want [3]float64
	}{
		{0.25, [3]float64{0.75, 0.25, 0}},
		{1.5, [3]float64{0, 0.5, 0.5}},
		{-1, [3]float64{1, 0, 0}},
		{3, [3]float64{0, 0, 1}},
	}
	for _, tt := range tests {
		h.values["parameters/blend_position"] = variant.Float(tt.pos)
		h.frame(0.1, false)
		got := [3]float64{weight(walk), weight(run), weight(sprint)}
		for i := range got {
			if !approx(got[i], tt.want[i]) {
				t.Errorf("pos %v: weights %v, want %v", tt.pos, got, tt.want)
				break
			}
		}
	}
	if _, ok := h.values["parameters/1/time"]; !ok {
		t.Errorf("point parameters not declared under their index")
	}
}

func TestBlendSpace2D(t *testing.T) {
	bs := NewBlendSpace2D()
	pts := []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	leaves := make([]*Animation, len(pts))
	for i, p := range pts {
		leaves[i] = NewAnimation("a")
		bs.AddBlendPoint(leaves[i], p)
	}
	if tris := bs.Triangles(); len(tris) != 2 {
		t.Fatalf("triangles = %v, want 2", tris)
	}

	h := newHarness(bs, library{"a": clipWithLoop("a", 1, clip.LoopLinear)}, "Body")
	sum := func() float64 {
		s := 0.0
		for _, l := range leaves {
			s += weight(l)
		}
		return s
	}

	h.values["parameters/blend_position"] = variant.Vector2(vec.Vec2{X: 0.1, Y: 0.1})
	h.frame(0.1, false)
	if !approx(sum(), 1) || weight(leaves[0]) < 0.79 {
		t.Errorf("inside weights sum=%v corner=%v", sum(), leaves[0].Weights())
	}

	// Outside the hull the position projects onto the nearest edge.
	h.values["parameters/blend_position"] = variant.Vector2(vec.Vec2{X: 0.5, Y: -3})
	h.frame(0.1, false)
	if !approx(weight(leaves[0]), 0.5) || !approx(weight(leaves[1]), 0.5) {
		t.Errorf("edge weights %v %v", leaves[0].Weights(), leaves[1].Weights())
	}

	bs.SetBlendMode(BlendDiscrete)
	h.values["parameters/blend_position"] = variant.Vector2(vec.Vec2{X: 0.9, Y: 0.8})
	h.frame(0.1, false)
	if got := h.values["parameters/closest"].AsInt(); got != 3 {
		t.Errorf("closest = %d, want 3", got)
	}
	if len(h.state.Records) != 1 || !h.state.Records[0].Seeked {
		t.Errorf("discrete switch should seek the new point: %+v", h.state.Records)
	}
}

func TestTriangulate(t *testing.T) {
	if tris := triangulate([]vec.Vec2{{X: 0}, {X: 1}, {X: 2}}); len(tris) != 0 {
		t.Errorf("collinear points gave %v", tris)
	}
	tris := triangulate([]vec.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}, {X: 1, Y: 0.5}})
	if len(tris) != 3 {
		t.Errorf("fan around interior point = %v, want 3 triangles", tris)
	}
	w := barycentric(vec.Vec2{X: 0.25, Y: 0.25}, vec.Vec2{}, vec.Vec2{X: 1}, vec.Vec2{Y: 1})
	if !approx(w[0], 0.5) || !approx(w[1], 0.25) || !approx(w[2], 0.25) {
		t.Errorf("barycentric = %v", w)
	}
}
