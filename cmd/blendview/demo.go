package main

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation/nodes"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation_tree"
	"github.com/Carmen-Shannon/oxy-anim/engine/audio"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/player"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

// Parameter paths of the demo graph.
const (
	mixParam  = "parameters/mix/blend_amount"
	jumpParam = "parameters/jump/active"
)

// takeoff is when the jump sound starts, after the one-shot has faded in.
const takeoff = 0.12

// demo is a character whose Body is driven by idle, walk and jump clips through
// idle/walk -> Blend2 "mix" -> OneShot "jump" -> output. The jump clip also plays a sound on
// the Speaker node.
type demo struct {
	scene   scene.Scene
	tree    animation_tree.AnimationTree
	body    scene.Node3D
	speaker audio.Player
}

func demoClips(jumpSound common.AudioStream) []clip.Clip {
	return []clip.Clip{
		clip.NewClip("idle", 1, clip.WithLoopMode(clip.LoopLinear),
			clip.WithPositionTrack("Body",
				clip.VectorKey{Time: 0, Value: r3.Vec{}},
				clip.VectorKey{Time: 0.5, Value: r3.Vec{Y: 0.2}},
			),
		),
		clip.NewClip("walk", 1, clip.WithLoopMode(clip.LoopPingPong),
			clip.WithPositionTrack("Body",
				clip.VectorKey{Time: 0, Value: r3.Vec{X: -1}},
				clip.VectorKey{Time: 1, Value: r3.Vec{X: 1}},
			),
		),
		clip.NewClip("jump", 0.6,
			clip.WithPositionTrack("Body",
				clip.VectorKey{Time: 0, Value: r3.Vec{}},
				clip.VectorKey{Time: 0.3, Value: r3.Vec{Y: 1}},
				clip.VectorKey{Time: 0.6, Value: r3.Vec{}},
			),
			clip.WithTrackInterpolation(clip.InterpolationCubic),
			clip.WithAudioTrack("Speaker", clip.AudioKey{Time: takeoff, Stream: jumpSound}),
		),
	}
}

func demoGraph() (*nodes.BlendTree, error) {
	bt := nodes.NewBlendTree()
	graph := []struct {
		name string
		node animation.Node
		pos  vec.Vec2
	}{
		{"idle", nodes.NewAnimation("idle"), vec.Vec2{X: 0, Y: 0}},
		{"walk", nodes.NewAnimation("walk"), vec.Vec2{X: 0, Y: 120}},
		{"mix", nodes.NewBlend2(), vec.Vec2{X: 200, Y: 60}},
		{"jump_clip", nodes.NewAnimation("jump"), vec.Vec2{X: 200, Y: 180}},
		{"jump", nodes.NewOneShot(nodes.WithFadeIn(0.1, ease.OutQuad), nodes.WithFadeOut(0.15, ease.InQuad)), vec.Vec2{X: 400, Y: 60}},
	}
	for _, g := range graph {
		if err := bt.AddNode(g.name, g.node, g.pos); err != nil {
			return nil, fmt.Errorf("add %s: %w", g.name, err)
		}
	}

	links := []struct {
		dst   string
		input int
		src   string
	}{
		{"mix", 0, "idle"},
		{"mix", 1, "walk"},
		{"jump", 0, "mix"},
		{"jump", 1, "jump_clip"},
		{nodes.OutputName, 0, "jump"},
	}
	for _, l := range links {
		if err := bt.ConnectNode(l.dst, l.input, l.src); err != nil {
			return nil, fmt.Errorf("connect %s -> %s: %w", l.src, l.dst, err)
		}
	}
	return bt, nil
}

// newDemo builds the demo scene. The tree processes on the physics callback of ticker and
// reports its frames to observer when one is given. jumpSound plays at takeoff.
func newDemo(ticker animation_tree.Ticker, observer animation_tree.FrameObserver, jumpSound common.AudioStream, logger *log.Logger) (*demo, error) {
	graph, err := demoGraph()
	if err != nil {
		return nil, err
	}

	d := &demo{
		body:    scene.NewNode3D("Body"),
		speaker: audio.NewPlayer("Speaker", audio.WithLogger(logger)),
	}
	d.tree = animation_tree.NewAnimationTree("AnimationTree",
		animation_tree.WithTreeRoot(graph),
		animation_tree.WithPlayerPath("../AnimationPlayer"),
		animation_tree.WithProcessCallback(animation_tree.ProcessPhysics),
		animation_tree.WithTicker(ticker),
		animation_tree.WithLogger(logger),
		animation_tree.WithFrameObserver(observer),
		animation_tree.WithActive(true),
	)

	char := scene.NewNode3D("Character")
	for _, n := range []scene.Node{
		player.NewAnimationPlayer("AnimationPlayer", player.WithAnimations(demoClips(jumpSound)...), player.WithLogger(logger)),
		d.tree,
		d.body,
		d.speaker,
	} {
		if err := char.AddChild(n); err != nil {
			return nil, err
		}
	}
	d.scene = scene.NewScene("blendview", scene.WithChildren(char), scene.WithLogger(logger))
	return d, nil
}
