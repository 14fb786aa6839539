// Package animation_tree holds the AnimationTree node: it evaluates a blend graph against the
// clips of an AnimationPlayer every frame and writes the blended result into the scene.
package animation_tree

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/player"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"golang.org/x/time/rate"
)

var (
	// ErrNoRoot is returned when the tree has no graph root.
	ErrNoRoot = errors.New("animation tree: no graph root")

	// ErrNoPlayer is returned when the player path, or the player's root node, does not resolve.
	ErrNoPlayer = errors.New("animation tree: animation player does not resolve")

	// ErrPlayerMissing is returned when the node at the player path is not an AnimationPlayer.
	ErrPlayerMissing = errors.New("animation tree: node is not an AnimationPlayer")

	// ErrInvalidGraph is returned when a node invalidated the graph during the frame.
	ErrInvalidGraph = errors.New("animation tree: invalid graph")

	// ErrParameterNotFound is returned when writing a parameter the graph does not declare.
	ErrParameterNotFound = errors.New("animation tree: parameter not found")
)

// ProcessCallback selects what drives the tree.
type ProcessCallback uint8

const (
	// ProcessPhysics advances the tree on every physics tick.
	ProcessPhysics ProcessCallback = iota

	// ProcessIdle advances the tree on every idle frame.
	ProcessIdle

	// ProcessManual advances the tree only through Advance.
	ProcessManual
)

func (c ProcessCallback) String() string {
	switch c {
	case ProcessPhysics:
		return "physics"
	case ProcessIdle:
		return "idle"
	case ProcessManual:
		return "manual"
	}
	return "unknown"
}

// AnimationTree is a scene node evaluating a blend graph. Each frame it resolves the clips of the
// player at PlayerPath, descends the graph to collect weighted clip samples, blends them per
// target and commits the result to the scene.
type AnimationTree interface {
	scene.Node

	// TreeRoot returns the graph root.
	TreeRoot() animation.Node

	// SetTreeRoot replaces the graph root. The graph restarts on the next frame.
	//
	// Parameters:
	//   - root: the new root, or nil
	SetTreeRoot(root animation.Node)

	// PlayerPath returns the path from the tree to its AnimationPlayer.
	PlayerPath() common.NodePath

	// SetPlayerPath changes the path from the tree to its AnimationPlayer.
	//
	// Parameters:
	//   - path: the node path, relative to the tree unless absolute
	SetPlayerPath(path common.NodePath)

	// Active reports whether the tree processes on its callback.
	Active() bool

	// SetActive starts or stops processing. Activating restarts the graph; deactivating stops
	// every stream and nested player the tree started.
	//
	// Parameters:
	//   - active: the new state
	SetActive(active bool)

	// ProcessCallback returns what drives the tree.
	ProcessCallback() ProcessCallback

	// SetProcessCallback changes what drives the tree. An active tree is deactivated and
	// reactivated so it holds one subscription at a time.
	//
	// Parameters:
	//   - cb: the new callback
	SetProcessCallback(cb ProcessCallback)

	// SetTicker sets the source of physics and idle callbacks.
	SetTicker(ticker Ticker)

	// Advance processes one frame of delta seconds, whatever the callback.
	//
	// Parameters:
	//   - delta: the frame time in seconds
	//
	// Returns:
	//   - error: ErrNoRoot, ErrNoPlayer or ErrPlayerMissing when the tree cannot run, which also
	//     deactivates it, or ErrInvalidGraph with the reasons when the graph is invalid
	Advance(delta float64) error

	// RootMotionTrack returns the track whose motion is extracted instead of applied.
	RootMotionTrack() common.NodePath

	// SetRootMotionTrack designates the track whose motion is extracted instead of applied.
	SetRootMotionTrack(path common.NodePath)

	// RootMotionTransform returns the motion extracted during the last frame.
	RootMotionTransform() common.Transform

	// Parameter reads a parameter by full path, e.g. "parameters/mix/blend_amount".
	//
	// Parameters:
	//   - path: the parameter path
	//
	// Returns:
	//   - variant.Variant: the value, or nil when nothing is stored at path
	Parameter(path string) variant.Variant

	// SetParameter writes a declared parameter by full path.
	//
	// Parameters:
	//   - path: the parameter path
	//   - v: the new value
	//
	// Returns:
	//   - error: ErrParameterNotFound when the graph does not declare path
	SetParameter(path string, v variant.Variant) error

	// ParameterList returns every declared parameter path in graph order.
	ParameterList() []string

	// RenameParameter moves every parameter value under oldBase to newBase, leaving the old
	// paths at their defaults. Call it after renaming a node of the graph.
	//
	// Parameters:
	//   - oldBase: the old path prefix, e.g. "parameters/A"
	//   - newBase: the new path prefix
	RenameParameter(oldBase, newBase string)

	// ConnectionActivity returns how strongly input of the node at path was driven in the last
	// frame, or 0 when it was not driven at all.
	//
	// Parameters:
	//   - path: the node's parameter path, e.g. "parameters/mix"
	//   - input: the input index
	//
	// Returns:
	//   - float64: the largest weight handed to the input
	ConnectionActivity(path string, input int) float64

	// InvalidReason returns why the graph was invalid in the last frame, one bullet per line.
	InvalidReason() string

	// Pass returns the number of graph descents so far.
	Pass() uint64

	// TrackCount returns the number of resolved track targets.
	TrackCount() int

	// ClearCaches forgets every resolved track. They are resolved again on the next frame.
	ClearCaches()

	// ExportParameters writes the declared parameters as JSON.
	//
	// Returns:
	//   - []byte: the JSON document
	//   - error: an encoding error
	ExportParameters() ([]byte, error)

	// ImportParameters sets parameters from a document written by ExportParameters. Paths the
	// graph does not declare are logged and skipped.
	//
	// Parameters:
	//   - data: the JSON document
	//
	// Returns:
	//   - error: wraps ErrSnapshot when the document or an entry cannot be read
	ImportParameters(data []byte) error

	// MethodQueue returns the queue method tracks push to unless another sink was configured.
	MethodQueue() *MethodQueue
}

// animationTree implements the AnimationTree interface.
type animationTree struct {
	scene.Base

	root     animation.Node
	rootConn int

	playerPath common.NodePath
	playerID   uint64
	playerConn int

	callback ProcessCallback
	ticker   Ticker
	tickID   int
	ticking  bool
	active   bool
	started  bool

	rootMotionTrack string
	rootMotion      common.Transform

	state      *animation.State
	params     *parameterPlane
	tracks     map[string]trackEntry
	playing    map[string]trackEntry
	watched    map[uint64]int
	cacheValid bool
	setupPass  uint64

	queue    *MethodQueue
	sink     MethodSink
	observer FrameObserver
	logger   *log.Logger
	warnings *rate.Limiter
}

var (
	_ AnimationTree    = &animationTree{}
	_ scene.TreeExiter = &animationTree{}
)

// NewAnimationTree creates an inactive tree processing on the idle callback.
//
// Parameters:
//   - name: the node name
//   - options: functional options to further configure the tree
//
// Returns:
//   - AnimationTree: the newly created tree
func NewAnimationTree(name string, options ...AnimationTreeBuilderOption) AnimationTree {
	t := &animationTree{
		callback:   ProcessIdle,
		started:    true,
		rootMotion: common.IdentityTransform(),
		params:     newParameterPlane(),
		tracks:     make(map[string]trackEntry),
		playing:    make(map[string]trackEntry),
		watched:    make(map[uint64]int),
		queue:      NewMethodQueue(),
		logger:     log.Default(),
		warnings:   rate.NewLimiter(rate.Every(time.Second), 16),
	}
	t.Init(t, name)
	t.sink = t.queue
	t.state = animation.NewState(nil, t.params)

	for _, opt := range options {
		opt(t)
	}
	if t.active {
		t.active = false
		t.SetActive(true)
	}
	return t
}

func (t *animationTree) TreeRoot() animation.Node { return t.root }

func (t *animationTree) SetTreeRoot(root animation.Node) {
	if t.root != nil {
		t.root.TreeChanged().Disconnect(t.rootConn)
	}
	t.root = root
	if root != nil {
		t.rootConn = root.TreeChanged().Connect(func(animation.Node) { t.params.dirty = true })
	}
	t.params.dirty = true
	t.started = true
}

func (t *animationTree) PlayerPath() common.NodePath { return t.playerPath }

func (t *animationTree) SetPlayerPath(path common.NodePath) {
	t.playerPath = path
	t.clearCaches()
}

func (t *animationTree) Active() bool { return t.active }

func (t *animationTree) SetActive(active bool) {
	if t.active == active {
		return
	}
	t.active = active
	t.started = active
	t.syncTicker()
	if !active && t.IsInsideTree() {
		t.stopPlaying()
	}
}

func (t *animationTree) ProcessCallback() ProcessCallback { return t.callback }

func (t *animationTree) SetProcessCallback(cb ProcessCallback) {
	if t.callback == cb {
		return
	}
	was := t.active
	if was {
		t.SetActive(false)
	}
	t.callback = cb
	if was {
		t.SetActive(true)
	}
}

func (t *animationTree) SetTicker(ticker Ticker) {
	if t.ticking {
		t.ticker.Unsubscribe(t.tickID)
		t.ticking = false
	}
	t.ticker = ticker
	t.syncTicker()
}

// syncTicker holds exactly the subscription the active state and callback ask for.
func (t *animationTree) syncTicker() {
	if t.ticking {
		t.ticker.Unsubscribe(t.tickID)
		t.ticking = false
	}
	if !t.active || t.ticker == nil {
		return
	}
	var kind engine.TickKind
	switch t.callback {
	case ProcessPhysics:
		kind = engine.TickPhysics
	case ProcessIdle:
		kind = engine.TickIdle
	default:
		return
	}
	t.tickID = t.ticker.Subscribe(kind, t.tick)
	t.ticking = true
}

func (t *animationTree) tick(delta float64) {
	if !t.active || !t.IsInsideTree() {
		return
	}
	if err := t.processGraph(delta); err != nil {
		t.warnf("%v", err)
	}
}

func (t *animationTree) Advance(delta float64) error {
	return t.processGraph(delta)
}

func (t *animationTree) RootMotionTrack() common.NodePath {
	return common.ParseNodePath(t.rootMotionTrack)
}

func (t *animationTree) SetRootMotionTrack(path common.NodePath) {
	t.rootMotionTrack = path.String()
}

func (t *animationTree) RootMotionTransform() common.Transform { return t.rootMotion }

func (t *animationTree) Parameter(path string) variant.Variant {
	t.params.rebuild(t.root)
	return t.params.get(path)
}

func (t *animationTree) SetParameter(path string, v variant.Variant) error {
	t.params.rebuild(t.root)
	if !t.params.set(path, v) {
		return fmt.Errorf("%w: %s", ErrParameterNotFound, path)
	}
	return nil
}

func (t *animationTree) ParameterList() []string {
	t.params.rebuild(t.root)
	return append([]string(nil), t.params.declared...)
}

func (t *animationTree) RenameParameter(oldBase, newBase string) {
	t.params.rename(oldBase, newBase)
}

func (t *animationTree) ConnectionActivity(path string, input int) float64 {
	return t.params.connectionActivity(path, input, t.state.Pass)
}

func (t *animationTree) InvalidReason() string { return t.state.InvalidReasons }

func (t *animationTree) Pass() uint64 { return t.state.Pass }

func (t *animationTree) TrackCount() int { return t.state.TrackCount }

func (t *animationTree) ClearCaches() { t.clearCaches() }

func (t *animationTree) ExportParameters() ([]byte, error) {
	t.params.rebuild(t.root)
	return t.params.exportParameters()
}

func (t *animationTree) ImportParameters(data []byte) error {
	t.params.rebuild(t.root)
	skipped, err := t.params.importParameters(data)
	for _, key := range skipped {
		t.logger.Printf("[AnimationTree] snapshot parameter %s is not declared, skipped", key)
	}
	return err
}

func (t *animationTree) MethodQueue() *MethodQueue { return t.queue }

// ExitTree stops what the tree started and forgets every resolved target.
func (t *animationTree) ExitTree() {
	t.stopPlaying()
	t.clearCaches()
	sc := t.Scene()
	t.unwatchAll(sc)
	if sc != nil {
		if p, ok := sc.Instance(t.playerID).(player.AnimationPlayer); ok {
			p.CachesCleared().Disconnect(t.playerConn)
		}
	}
	t.playerID = 0
}

// processGraph runs one frame and reports it to the frame observer.
func (t *animationTree) processGraph(delta float64) error {
	start := time.Now()
	err := t.step(delta)
	if t.observer != nil {
		t.observer.ObserveFrame(time.Since(start), len(t.tracks), err == nil)
	}
	return err
}

func (t *animationTree) step(delta float64) error {
	t.rootMotion = common.IdentityTransform()

	if t.root == nil {
		t.fail()
		return ErrNoRoot
	}
	sc := t.Scene()
	if sc == nil || t.playerPath.IsEmpty() {
		t.fail()
		return fmt.Errorf("%w: no player path", ErrNoPlayer)
	}
	node, err := sc.GetNode(t, t.playerPath)
	if err != nil {
		t.fail()
		return fmt.Errorf("%w: %s: %v", ErrNoPlayer, t.playerPath, err)
	}
	p, ok := node.(player.AnimationPlayer)
	if !ok {
		t.fail()
		return fmt.Errorf("%w: %s", ErrPlayerMissing, t.playerPath)
	}
	t.bindPlayer(p)

	if !t.cacheValid {
		if err := t.updateCaches(sc, p); err != nil {
			return err
		}
	}
	t.params.rebuild(t.root)
	t.state.Clips = p

	if t.started {
		t.started = false
		if !t.descend(0, true) {
			return t.invalid()
		}
		t.applyRecords()
	}
	if !t.descend(delta, false) {
		return t.invalid()
	}
	t.applyRecords()
	t.commit()
	return nil
}

// descend opens a pass and evaluates the graph once.
func (t *animationTree) descend(at float64, seek bool) bool {
	t.state.Pass++
	t.state.Reset()
	animation.ResetWeights(t.root, t.state.TrackCount, 1)
	animation.Run(t.state, t.root, ParametersBase, at, seek, false)
	return t.state.Valid
}

func (t *animationTree) invalid() error {
	return fmt.Errorf("%w:\n%s", ErrInvalidGraph, t.state.InvalidReasons)
}

// fail deactivates the tree after a fatal resolution error.
func (t *animationTree) fail() {
	t.SetActive(false)
	t.cacheValid = false
}

// bindPlayer follows the player's CachesCleared signal, switching over when the player changed.
func (t *animationTree) bindPlayer(p player.AnimationPlayer) {
	if p.InstanceID() == t.playerID {
		return
	}
	if t.playerID != 0 {
		if old, ok := t.Scene().Instance(t.playerID).(player.AnimationPlayer); ok {
			old.CachesCleared().Disconnect(t.playerConn)
		}
	}
	t.playerID = p.InstanceID()
	t.playerConn = p.CachesCleared().Connect(func(player.AnimationPlayer) { t.clearCaches() })
	t.clearCaches()
}

func errPlayerRoot(path common.NodePath, err error) error {
	return fmt.Errorf("%w: player root %s: %v", ErrNoPlayer, path, err)
}

// warnf logs through the warning limiter so a broken path rebuilt every frame does not flood the
// log.
func (t *animationTree) warnf(format string, args ...any) {
	if t.warnings.Allow() {
		t.logger.Printf("[AnimationTree] "+format, args...)
	}
}
