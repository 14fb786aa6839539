package scene

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/spatial/r3"
)

func approxVec(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6 && math.Abs(a.Z-b.Z) < 1e-6
}

// buildTree returns root -> Player -> {Skeleton, Body}.
func buildTree(t *testing.T) (Scene, Node, Skeleton3D, MeshInstance3D) {
	t.Helper()
	player := NewNode3D("Player")
	skel := NewSkeleton3D("Skeleton")
	body := NewMeshInstance3D("Body", "smile", "blink")
	if err := player.AddChild(skel); err != nil {
		t.Fatal(err)
	}
	if err := player.AddChild(body); err != nil {
		t.Fatal(err)
	}
	s := NewScene("test", WithChildren(player))
	return s, player, skel, body
}

func TestGetNode(t *testing.T) {
	s, player, skel, body := buildTree(t)

	cases := []struct {
		from Node
		path string
		want Node
	}{
		{player, "Skeleton", skel},
		{skel, "../Body", body},
		{skel, "..", player},
		{body, ".", body},
		{nil, "/root/Player/Body", body},
		{skel, "/Player", player},
		{body, "../Skeleton:hips", skel},
	}
	for _, tc := range cases {
		got, err := s.GetNode(tc.from, common.ParseNodePath(tc.path))
		if err != nil {
			t.Errorf("GetNode(%q): %v", tc.path, err)
			continue
		}
		if got != tc.want {
			t.Errorf("GetNode(%q) = %s, want %s", tc.path, got.Name(), tc.want.Name())
		}
	}

	if _, err := s.GetNode(player, common.ParseNodePath("Missing")); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("missing node error = %v", err)
	}
	if got := Path(body); got != "/root/Player/Body" {
		t.Errorf("Path = %q", got)
	}
}

func TestRegistryAndExited(t *testing.T) {
	s, player, skel, body := buildTree(t)
	if s.Count() != 4 {
		t.Fatalf("Count = %d, want 4", s.Count())
	}
	if s.Instance(skel.InstanceID()) != skel {
		t.Fatalf("Instance lookup failed")
	}

	var order []string
	for _, n := range []Node{player, skel, body} {
		n.Exited().Connect(func(n Node) { order = append(order, n.Name()) })
	}
	if err := s.Root().RemoveChild(player); err != nil {
		t.Fatal(err)
	}

	if want := []string{"Skeleton", "Body", "Player"}; !reflect.DeepEqual(order, want) {
		t.Errorf("exit order = %v, want %v", order, want)
	}
	if s.Instance(skel.InstanceID()) != nil {
		t.Errorf("removed node still registered")
	}
	if skel.IsInsideTree() || player.Parent() != nil {
		t.Errorf("removed subtree still attached")
	}
	if err := s.Root().RemoveChild(player); !errors.Is(err, ErrNotChild) {
		t.Errorf("second removal error = %v", err)
	}

	// Re-adding brings the subtree back under fresh registration.
	if err := s.Root().AddChild(player); err != nil {
		t.Fatal(err)
	}
	if s.Instance(body.InstanceID()) != body {
		t.Errorf("re-added node not registered")
	}
	if err := s.Root().AddChild(player); !errors.Is(err, ErrAlreadyParented) {
		t.Errorf("double add error = %v", err)
	}
}

func TestResolveProperty(t *testing.T) {
	s, player, _, body := buildTree(t)
	mat := NewResource("material")
	body.SetResource("material", mat)

	n, res, left, err := s.ResolveProperty(player, common.ParseNodePath("Body:material:albedo"))
	if err != nil {
		t.Fatal(err)
	}
	if n != body || res != mat || !reflect.DeepEqual(left, []string{"albedo"}) {
		t.Errorf("ResolveProperty = %v %v %v", n.Name(), res, left)
	}

	n, res, left, err = s.ResolveProperty(player, common.ParseNodePath("Body:smile"))
	if err != nil {
		t.Fatal(err)
	}
	if n != body || res != nil || !reflect.DeepEqual(left, []string{"smile"}) {
		t.Errorf("ResolveProperty without resource = %v %v %v", n.Name(), res, left)
	}
}

func TestNode3DIndexed(t *testing.T) {
	n := NewNode3D("N")
	if !n.SetIndexed("position", variant.Vector3(r3.Vec{X: 1, Y: 2, Z: 3})) {
		t.Fatal("set position failed")
	}
	if !n.SetIndexed("position:y", variant.Float(5)) {
		t.Fatal("set position:y failed")
	}
	if got := n.Position(); !approxVec(got, r3.Vec{X: 1, Y: 5, Z: 3}) {
		t.Errorf("Position = %v", got)
	}
	if n.SetIndexed("position", variant.String("nope")) {
		t.Errorf("wrong kind accepted")
	}
	if !n.SetIndexed("rotation:y", variant.Float(math.Pi/2)) {
		t.Fatal("set rotation:y failed")
	}
	if got := common.QuatRotate(n.Quaternion(), r3.Vec{X: 1}); !approxVec(got, r3.Vec{Z: -1}) {
		t.Errorf("rotated x axis = %v", got)
	}
	if !n.SetIndexed("energy", variant.Float(2)) {
		t.Fatal("property bag rejected value")
	}
	if v, ok := n.GetIndexed("energy"); !ok || v.AsFloat() != 2 {
		t.Errorf("energy = %v %v", v, ok)
	}
}

func TestSkeletonPose(t *testing.T) {
	s := NewSkeleton3D("Skeleton")
	root := s.AddBone("hips", -1, common.Transform{Origin: r3.Vec{Y: 1}, Rotation: common.QuatIdentity(), Scale: common.Vec3One()})
	spine := s.AddBone("spine", root, common.Transform{Origin: r3.Vec{Y: 0.5}, Rotation: common.QuatIdentity(), Scale: common.Vec3One()})

	if s.FindBone("spine") != spine || s.FindBone("tail") != -1 {
		t.Fatalf("FindBone mismatch")
	}
	if got := s.BoneGlobalPose(spine).Origin; !approxVec(got, r3.Vec{Y: 1.5}) {
		t.Errorf("global spine = %v", got)
	}

	s.SetBonePosePosition(root, r3.Vec{X: 2, Y: 1})
	s.SetBonePoseScale(root, r3.Vec{X: 2, Y: 2, Z: 2})
	if got := s.BoneGlobalPose(spine).Origin; !approxVec(got, r3.Vec{X: 2, Y: 2}) {
		t.Errorf("posed global spine = %v", got)
	}
	if got := s.SkinMatrices()[spine]; got[13] != 2 || got[12] != 2 {
		t.Errorf("skin matrix translation = %v, %v", got[12], got[13])
	}

	s.ResetBonePoses()
	if got := s.BonePose(root).Origin; !approxVec(got, r3.Vec{Y: 1}) {
		t.Errorf("reset pose = %v", got)
	}
	if got := s.BoneRest(42); !approxVec(got.Scale, common.Vec3One()) {
		t.Errorf("bad index rest = %v", got)
	}
}

func TestMethods(t *testing.T) {
	n := NewNode("Events")
	var got []variant.Variant
	n.RegisterMethod("footstep", func(args []variant.Variant) { got = args })
	if err := n.Call("footstep", []variant.Variant{variant.Int(1)}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].AsInt() != 1 {
		t.Errorf("args = %v", got)
	}
	if err := n.Call("jump", nil); !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("unknown method error = %v", err)
	}
}
