package animation

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// InvalidPrefix starts every reason listed in State.InvalidReasons.
const InvalidPrefix = "•  "

// Record is one clip contribution collected during a descent, applied once the descent is over.
type Record struct {
	// Clip is the clip to sample.
	Clip clip.Clip

	// Time is the play head after the step.
	Time float64

	// Delta is the signed distance the play head travelled to reach Time.
	Delta float64

	// Seeked is true when Time was reached by a jump rather than by playback.
	Seeked bool

	// SeekRoot is true when a seek should still produce root motion.
	SeekRoot bool

	// Pingponged is +1 or -1 when a ping-pong clip reflected at its end or start during the step.
	Pingponged int

	// Blend is the scalar weight the emitting node handed the clip.
	Blend float64

	// TrackBlends is a view onto the emitting node's per-target weights, indexed by track slot.
	TrackBlends []float64

	// Path is the base path of the emitting node.
	Path string
}

// ParameterStore is the parameter plane nodes read and write during a descent.
type ParameterStore interface {
	// Parameter returns the value of name under basePath, or nil when undeclared.
	Parameter(basePath, name string) variant.Variant

	// SetParameter writes the value of name under basePath. Undeclared names are ignored.
	SetParameter(basePath, name string, v variant.Variant)

	// RecordActivity stores how strongly input of the node at basePath was driven in pass.
	RecordActivity(basePath string, input int, activity float64, pass uint64)
}

// State is the frame scratch shared by every node of one descent.
type State struct {
	// Clips is the library Animation nodes pull from.
	Clips ClipSource

	// Params is the parameter plane.
	Params ParameterStore

	// TrackMap maps a target path to its slot in the weight vectors.
	TrackMap map[string]int

	// TrackCount is the width of every weight vector.
	TrackCount int

	// Records collects the clips blended during the descent.
	Records []Record

	// Pass increments once per descent.
	Pass uint64

	// Valid is false once any node invalidated the graph.
	Valid bool

	// InvalidReasons lists why, one prefixed reason per line.
	InvalidReasons string
}

// NewState creates an empty state bound to a clip library and a parameter plane.
func NewState(clips ClipSource, params ParameterStore) *State {
	return &State{Clips: clips, Params: params, TrackMap: make(map[string]int)}
}

// Reset prepares the state for a new descent: valid, no records, no reasons.
func (s *State) Reset() {
	s.Valid = true
	s.InvalidReasons = ""
	s.Records = s.Records[:0]
}

// Invalidate marks the graph invalid and appends reason.
//
// Parameters:
//   - reason: the human readable reason
func (s *State) Invalidate(reason string) {
	s.Valid = false
	var b strings.Builder
	b.WriteString(s.InvalidReasons)
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(InvalidPrefix)
	b.WriteString(reason)
	s.InvalidReasons = b.String()
}
