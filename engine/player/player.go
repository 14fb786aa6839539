// Package player holds the AnimationPlayer node: the clip library blend trees pull their clips
// from, and a small playback core so one player can drive another through animation tracks.
package player

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
)

var (
	// ErrAnimationExists is returned when adding or renaming onto a taken name.
	ErrAnimationExists = errors.New("player: animation already exists")

	// ErrAnimationNotFound is returned when a named animation is not in the library.
	ErrAnimationNotFound = errors.New("player: animation not found")
)

// AnimationPlayer is a scene node owning a named clip library.
// Any change to the library emits CachesCleared so evaluators that resolved tracks against the
// library rebuild them on their next frame.
type AnimationPlayer interface {
	scene.Node

	// AddAnimation adds a clip under name.
	//
	// Parameters:
	//   - name: the library key
	//   - c: the clip
	//
	// Returns:
	//   - error: ErrAnimationExists if name is taken
	AddAnimation(name string, c clip.Clip) error

	// RemoveAnimation drops a clip. Stops playback if it was the current animation.
	//
	// Parameters:
	//   - name: the library key
	//
	// Returns:
	//   - error: ErrAnimationNotFound if name is unknown
	RemoveAnimation(name string) error

	// RenameAnimation moves a clip to a new key, keeping its position in the list.
	//
	// Parameters:
	//   - from: the current key
	//   - to: the new key
	//
	// Returns:
	//   - error: ErrAnimationNotFound or ErrAnimationExists
	RenameAnimation(from, to string) error

	// Animation returns the clip stored under name.
	Animation(name string) (clip.Clip, bool)

	// HasAnimation reports whether name is in the library.
	HasAnimation(name string) bool

	// AnimationList returns the library keys in insertion order.
	AnimationList() []string

	// RootNode returns the path track paths are resolved relative to, seen from the player.
	RootNode() common.NodePath

	// SetRootNode changes the track root. Emits CachesCleared.
	SetRootNode(path common.NodePath)

	// CachesCleared is emitted whenever resolved tracks may have become stale.
	CachesCleared() *common.Signal[AnimationPlayer]

	// Play starts name from the beginning, or resumes it if it is already the current animation.
	// An empty name replays the assigned animation.
	//
	// Parameters:
	//   - name: the animation to play
	//
	// Returns:
	//   - error: ErrAnimationNotFound if name is unknown
	Play(name string) error

	// Seek moves the playback position of the assigned animation.
	//
	// Parameters:
	//   - t: the new position in seconds
	//   - update: emit Seeked so listeners sample the new position immediately
	Seek(t float64, update bool)

	// Stop halts playback and rewinds to the start.
	Stop()

	// IsPlaying reports whether Advance moves the position.
	IsPlaying() bool

	// AssignedAnimation returns the animation Play and Seek act on.
	AssignedAnimation() string

	// SetAssignedAnimation selects the animation without starting it.
	SetAssignedAnimation(name string)

	// CurrentPosition returns the playback position in seconds.
	CurrentPosition() float64

	// SpeedScale returns the playback rate multiplier.
	SpeedScale() float64

	// SetSpeedScale changes the playback rate multiplier.
	SetSpeedScale(s float64)

	// Advance moves a playing animation forward by delta seconds, wrapping or stopping at the
	// ends according to the clip loop mode.
	//
	// Parameters:
	//   - delta: elapsed time in seconds
	Advance(delta float64)

	// Seeked is emitted with the new position by Seek(t, true).
	Seeked() *common.Signal[float64]

	// Finished is emitted with the animation name when a non-looping animation reaches its end.
	Finished() *common.Signal[string]
}

type animationPlayer struct {
	scene.Base

	names    []string
	library  map[string]clip.Clip
	rootNode common.NodePath

	assigned  string
	playing   bool
	position  float64
	speed     float64
	backwards bool

	cachesCleared common.Signal[AnimationPlayer]
	seeked        common.Signal[float64]
	finished      common.Signal[string]
	logger        *log.Logger
}

// Ensure animationPlayer implements AnimationPlayer interface.
var _ AnimationPlayer = &animationPlayer{}

// NewAnimationPlayer creates an empty player whose root node is its parent.
//
// Parameters:
//   - name: the node name
//   - options: functional options to further configure the player
//
// Returns:
//   - AnimationPlayer: the new detached player
func NewAnimationPlayer(name string, options ...AnimationPlayerBuilderOption) AnimationPlayer {
	p := &animationPlayer{
		library:  make(map[string]clip.Clip),
		rootNode: common.ParseNodePath(".."),
		speed:    1,
		logger:   log.Default(),
	}
	p.Init(p, name)
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *animationPlayer) AddAnimation(name string, c clip.Clip) error {
	if _, ok := p.library[name]; ok {
		return fmt.Errorf("%w: %s", ErrAnimationExists, name)
	}
	p.library[name] = c
	p.names = append(p.names, name)
	p.cachesCleared.Emit(p)
	return nil
}

func (p *animationPlayer) RemoveAnimation(name string) error {
	if _, ok := p.library[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAnimationNotFound, name)
	}
	delete(p.library, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	if p.assigned == name {
		p.playing = false
		p.assigned = ""
		p.position = 0
	}
	p.cachesCleared.Emit(p)
	return nil
}

func (p *animationPlayer) RenameAnimation(from, to string) error {
	c, ok := p.library[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAnimationNotFound, from)
	}
	if _, ok := p.library[to]; ok {
		return fmt.Errorf("%w: %s", ErrAnimationExists, to)
	}
	delete(p.library, from)
	p.library[to] = c
	for i, n := range p.names {
		if n == from {
			p.names[i] = to
		}
	}
	if p.assigned == from {
		p.assigned = to
	}
	p.cachesCleared.Emit(p)
	return nil
}

func (p *animationPlayer) Animation(name string) (clip.Clip, bool) {
	c, ok := p.library[name]
	return c, ok
}

func (p *animationPlayer) HasAnimation(name string) bool {
	_, ok := p.library[name]
	return ok
}

func (p *animationPlayer) AnimationList() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *animationPlayer) RootNode() common.NodePath { return p.rootNode }

func (p *animationPlayer) SetRootNode(path common.NodePath) {
	p.rootNode = path
	p.cachesCleared.Emit(p)
}

func (p *animationPlayer) CachesCleared() *common.Signal[AnimationPlayer] { return &p.cachesCleared }

func (p *animationPlayer) Play(name string) error {
	if name == "" {
		name = p.assigned
	}
	if _, ok := p.library[name]; !ok {
		return fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
	}
	if name != p.assigned {
		p.assigned = name
		p.position = 0
	}
	p.backwards = false
	p.playing = true
	return nil
}

func (p *animationPlayer) Seek(t float64, update bool) {
	if p.assigned == "" {
		p.logger.Printf("[AnimationPlayer] %s: seek without an assigned animation", p.Name())
		return
	}
	p.position = t
	if update {
		p.seeked.Emit(t)
	}
}

func (p *animationPlayer) Stop() {
	p.playing = false
	p.position = 0
}

func (p *animationPlayer) IsPlaying() bool { return p.playing }

func (p *animationPlayer) AssignedAnimation() string { return p.assigned }

func (p *animationPlayer) SetAssignedAnimation(name string) {
	if name == p.assigned {
		return
	}
	p.assigned = name
	p.position = 0
}

func (p *animationPlayer) CurrentPosition() float64 { return p.position }

func (p *animationPlayer) SpeedScale() float64 { return p.speed }

func (p *animationPlayer) SetSpeedScale(s float64) { p.speed = s }

func (p *animationPlayer) Seeked() *common.Signal[float64] { return &p.seeked }

func (p *animationPlayer) Finished() *common.Signal[string] { return &p.finished }

func (p *animationPlayer) Advance(delta float64) {
	if !p.playing {
		return
	}
	c, ok := p.library[p.assigned]
	if !ok {
		p.playing = false
		return
	}
	length := c.Length()
	step := delta * p.speed
	if p.backwards {
		step = -step
	}
	pos := p.position + step

	switch c.LoopMode() {
	case clip.LoopLinear:
		if length > 0 {
			pos = common.Fposmod(pos, length)
		}
	case clip.LoopPingPong:
		if length > 0 {
			if pos > length || pos < 0 {
				p.backwards = !p.backwards
			}
			pos = common.Pingpong(pos, length)
		}
	default:
		if pos >= length || pos <= 0 && step < 0 {
			p.position = common.Clamp(pos, 0, length)
			p.playing = false
			p.finished.Emit(p.assigned)
			return
		}
	}
	p.position = pos
}
