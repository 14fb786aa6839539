package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation/nodes"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation_tree"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/player"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

var quiet = log.New(io.Discard, "", 0)

// rigBuffer holds, in order: two timestamps, two translations, two keys of two morph weights
// and two rotations.
func rigBuffer() []byte {
	floats := []float32{
		0, 1,
		0, 1, 0, 2, 1, 0,
		0, 0, 1, 0.5,
		0, 0, 0, 1, 0, 0.70710677, 0, 0.70710677,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, floats)
	return buf.Bytes()
}

// rigDocument describes a two bone skin listed child first, a face mesh with two named morph
// targets and a camera node, with one animation touching all three.
func rigDocument(bufferURI string) map[string]any {
	buffer := map[string]any{"byteLength": 80}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "hips", "translation": []float64{0, 1, 0}, "children": []int{1}},
			map[string]any{"name": "spine", "translation": []float64{0, 0.5, 0}},
			map[string]any{"name": "Face", "mesh": 0},
			map[string]any{"name": "Camera"},
		},
		"skins": []any{map[string]any{"name": "Armature", "joints": []int{1, 0}}},
		"meshes": []any{map[string]any{
			"name":       "FaceMesh",
			"primitives": []any{map[string]any{"targets": []any{map[string]int{"POSITION": 0}, map[string]int{"POSITION": 0}}}},
			"weights":    []float64{0.25, 0},
			"extras":     map[string]any{"targetNames": []string{"smile", "blink"}},
		}},
		"animations": []any{map[string]any{
			"name": "walk",
			"channels": []any{
				map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}},
				map[string]any{"sampler": 1, "target": map[string]any{"node": 2, "path": "weights"}},
				map[string]any{"sampler": 2, "target": map[string]any{"node": 1, "path": "rotation"}},
				map[string]any{"sampler": 0, "target": map[string]any{"node": 3, "path": "translation"}},
			},
			"samplers": []any{
				map[string]any{"input": 0, "output": 1},
				map[string]any{"input": 0, "output": 2, "interpolation": "STEP"},
				map[string]any{"input": 0, "output": 3, "interpolation": "LINEAR"},
			},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "byteOffset": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 0, "byteOffset": 8, "componentType": 5126, "count": 2, "type": "VEC3"},
			map[string]any{"bufferView": 0, "byteOffset": 32, "componentType": 5126, "count": 4, "type": "SCALAR"},
			map[string]any{"bufferView": 0, "byteOffset": 48, "componentType": 5126, "count": 2, "type": "VEC4"},
		},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": 80}},
		"buffers":     []any{buffer},
	}
}

func rigJSON(t *testing.T, bufferURI string) []byte {
	t.Helper()
	data, err := json.Marshal(rigDocument(bufferURI))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

// rigGLB packs the rig into a GLB container with the buffer in the BIN chunk.
func rigGLB(t *testing.T) []byte {
	t.Helper()
	js := rigJSON(t, "")
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := rigBuffer()

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON})
	out.Write(js)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(bin)
	return out.Bytes()
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-5 }

func checkRig(t *testing.T, a *Asset) {
	t.Helper()
	if a.Name != "rig" {
		t.Errorf("asset name = %q, want rig", a.Name)
	}

	if len(a.Skeletons) != 1 {
		t.Fatalf("got %d skeletons", len(a.Skeletons))
	}
	sk := a.Skeletons[0]
	if sk.Name != "Armature" || len(sk.Bones) != 2 {
		t.Fatalf("skeleton = %q with %d bones", sk.Name, len(sk.Bones))
	}
	if sk.Bones[0].Name != "hips" || sk.Bones[0].Parent != -1 {
		t.Errorf("bone 0 = %q parent %d, want root hips", sk.Bones[0].Name, sk.Bones[0].Parent)
	}
	if sk.Bones[1].Name != "spine" || sk.Bones[1].Parent != 0 {
		t.Errorf("bone 1 = %q parent %d, want spine under hips", sk.Bones[1].Name, sk.Bones[1].Parent)
	}
	if !common.Vec3IsEqualApprox(sk.Bones[0].Rest.Origin, r3.Vec{Y: 1}) {
		t.Errorf("hips rest = %v", sk.Bones[0].Rest.Origin)
	}

	if len(a.Meshes) != 1 {
		t.Fatalf("got %d meshes", len(a.Meshes))
	}
	m := a.Meshes[0]
	if m.Name != "Face" || strings.Join(m.Shapes, ",") != "smile,blink" {
		t.Errorf("mesh = %q shapes %v", m.Name, m.Shapes)
	}
	if len(m.Weights) != 2 || m.Weights[0] != 0.25 {
		t.Errorf("mesh weights = %v", m.Weights)
	}

	walk := a.Clip("walk")
	if walk == nil {
		t.Fatal("clip walk not imported")
	}
	if walk.Length() != 1 || walk.TrackCount() != 4 {
		t.Fatalf("walk length %v, %d tracks", walk.Length(), walk.TrackCount())
	}

	hips := walk.FindTrack("Armature:hips", clip.TrackTypePosition3D)
	if hips < 0 {
		t.Fatal("no hips position track")
	}
	if p, err := walk.PositionAt(hips, 0.5); err != nil || !common.Vec3IsEqualApprox(p, r3.Vec{X: 1, Y: 1}) {
		t.Errorf("hips at 0.5 = %v, %v", p, err)
	}

	smile := walk.FindTrack("Face:smile", clip.TrackTypeBlendShape)
	blink := walk.FindTrack("Face:blink", clip.TrackTypeBlendShape)
	if smile < 0 || blink < 0 {
		t.Fatal("missing blend shape tracks")
	}
	if walk.TrackInterpolation(smile) != clip.InterpolationNearest {
		t.Error("STEP sampler not mapped to nearest")
	}
	if v, _ := walk.BlendShapeAt(smile, 0.75); v != 0 {
		t.Errorf("stepped smile at 0.75 = %v, want 0", v)
	}
	if v, _ := walk.BlendShapeAt(blink, 1); !near(v, 0.5) {
		t.Errorf("blink at 1 = %v, want 0.5", v)
	}

	spine := walk.FindTrack("Armature:spine", clip.TrackTypeRotation3D)
	if spine < 0 {
		t.Fatal("no spine rotation track")
	}
	want := common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)
	if q, err := walk.RotationAt(spine, 1); err != nil || !common.QuatIsEqualApprox(q, want) {
		t.Errorf("spine at 1 = %v, %v", q, err)
	}
}

func TestLoadReaderEmbeddedBuffer(t *testing.T) {
	var logs bytes.Buffer
	l := NewLoader(BackendTypeGLTF, WithLogger(log.New(&logs, "", 0)))

	a, err := l.LoadReader("rig", bytes.NewReader(rigJSON(t, dataURI(rigBuffer()))), false)
	if err != nil {
		t.Fatal(err)
	}
	checkRig(t, a)

	if !strings.Contains(logs.String(), "skipped 1 channels") {
		t.Errorf("camera channel not reported: %q", logs.String())
	}
	if l.Get("rig") != a {
		t.Error("LoadReader did not cache the asset")
	}
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithLogger(quiet))
	a, err := l.LoadReader("rig", bytes.NewReader(rigGLB(t)), true)
	if err != nil {
		t.Fatal(err)
	}
	checkRig(t, a)
}

func TestLoadFileCaches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rig.bin"), rigBuffer(), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "rig.gltf")
	if err := os.WriteFile(path, rigJSON(t, "rig.bin"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF, WithLogger(quiet), WithLoopMode(clip.LoopLinear))
	a, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	checkRig(t, a)
	if a.Clip("walk").LoopMode() != clip.LoopLinear {
		t.Error("loop mode option not applied")
	}

	again, err := l.Load(path)
	if err != nil || again != a {
		t.Errorf("second Load = %p, %v; want cached %p", again, err, a)
	}
	if !l.Evict(path) || l.Evict(path) {
		t.Error("Evict should succeed once")
	}
	if len(l.Assets()) != 0 {
		t.Errorf("cache not empty: %v", l.Assets())
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithLogger(quiet))

	if _, err := l.Load("model.fbx"); err == nil {
		t.Error("unsupported extension accepted")
	}

	doc := rigDocument(dataURI(rigBuffer()))
	doc["asset"] = map[string]any{"version": "1.0"}
	data, _ := json.Marshal(doc)
	if _, err := l.LoadReader("old", bytes.NewReader(data), false); !errors.Is(err, errInvalidGLTFVersion) {
		t.Errorf("version 1.0 = %v, want errInvalidGLTFVersion", err)
	}

	short := rigDocument(dataURI(rigBuffer()[:40]))
	data, _ = json.Marshal(short)
	if _, err := l.LoadReader("short", bytes.NewReader(data), false); !errors.Is(err, errBufferSizeMismatch) {
		t.Errorf("short buffer = %v, want errBufferSizeMismatch", err)
	}

	if _, err := l.LoadReader("junk", strings.NewReader("glTF...."), true); err == nil {
		t.Error("truncated GLB accepted")
	}
	if l.Get("old") != nil || l.Get("short") != nil {
		t.Error("failed imports were cached")
	}
}

func TestDecomposeMatrix(t *testing.T) {
	want := common.Transform{
		Origin:   r3.Vec{X: 1, Y: 2, Z: 3},
		Rotation: common.QuatFromAxisAngle(r3.Vec{Z: 1}, math.Pi/3),
		Scale:    r3.Vec{X: 2, Y: 2, Z: 2},
	}
	got := decomposeMatrix(want.Matrix())
	if !common.Vec3IsEqualApprox(got.Origin, want.Origin) || !common.Vec3IsEqualApprox(got.Scale, want.Scale) {
		t.Errorf("origin %v scale %v", got.Origin, got.Scale)
	}
	if !common.QuatIsEqualApprox(got.Rotation, want.Rotation) {
		t.Errorf("rotation %v, want %v", got.Rotation, want.Rotation)
	}
}

func TestInstantiateDrivesTree(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithLogger(quiet))
	a, err := l.LoadReader("rig", bytes.NewReader(rigJSON(t, dataURI(rigBuffer()))), false)
	if err != nil {
		t.Fatal(err)
	}

	root := a.Instantiate()
	face, ok := root.Child("Face").(scene.MeshInstance3D)
	if !ok {
		t.Fatal("Face is not a mesh instance")
	}
	if face.BlendShapeValue(face.FindBlendShapeByName("smile")) != 0.25 {
		t.Error("default morph weight not applied")
	}

	tree := animation_tree.NewAnimationTree("AnimationTree",
		animation_tree.WithPlayerPath("../AnimationPlayer"),
		animation_tree.WithProcessCallback(animation_tree.ProcessManual),
		animation_tree.WithTreeRoot(nodes.NewAnimation("walk")),
		animation_tree.WithLogger(quiet),
	)
	for _, n := range []scene.Node{player.NewAnimationPlayer("AnimationPlayer", player.WithAnimations(a.Clips...)), tree} {
		if err := root.AddChild(n); err != nil {
			t.Fatal(err)
		}
	}
	scene.NewScene("world", scene.WithChildren(root), scene.WithLogger(quiet))

	if err := tree.Advance(0.5); err != nil {
		t.Fatal(err)
	}
	sk := root.Child("Armature").(scene.Skeleton3D)
	if p := sk.BonePose(sk.FindBone("hips")).Origin; !common.Vec3IsEqualApprox(p, r3.Vec{X: 1, Y: 1}) {
		t.Errorf("hips pose = %v, want (1, 1, 0)", p)
	}

	// A second instance has its own nodes.
	other := a.Instantiate()
	if other.Child("Armature") == sk {
		t.Error("instances share skeleton nodes")
	}
}
