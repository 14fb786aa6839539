package audio

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// silentDB is the volume at and below which output is muted.
const silentDB = -80.0

// Player is a scene node that plays one Stream at a time. Its output is pulled through Streamer,
// normally by a Bus, from whatever goroutine drives the audio device.
type Player interface {
	scene.Node

	// Stream returns the assigned stream, or nil.
	Stream() common.AudioStream

	// SetStream assigns the stream Play starts. Stops current playback.
	//
	// Parameters:
	//   - s: the stream; only *Stream values can actually be played
	SetStream(s common.AudioStream)

	// Play starts the assigned stream at from seconds.
	//
	// Parameters:
	//   - from: the start offset in seconds
	Play(from float64)

	// Stop halts playback.
	Stop()

	// IsPlaying reports whether samples are being produced.
	IsPlaying() bool

	// PlaybackPosition returns the position in seconds inside the stream.
	PlaybackPosition() float64

	// VolumeDB returns the volume in decibels.
	VolumeDB() float64

	// SetVolumeDB sets the volume in decibels; 0 is unity gain.
	SetVolumeDB(db float64)

	// Streamer returns the player's output. It produces silence while stopped and never drains.
	Streamer() beep.Streamer
}

type player struct {
	scene.Base

	mu       sync.Mutex
	stream   common.AudioStream
	current  beep.StreamSeeker
	from     float64
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	out      beep.Streamer
	playing  bool
	volumeDB float64
	logger   *log.Logger

	// extraDB is added to volumeDB; Player3D uses it for unit attenuation.
	extraDB float64
}

// Ensure player implements Player interface.
var _ Player = &player{}

// NewPlayer creates a stopped player with unity volume.
//
// Parameters:
//   - name: the node name
//   - options: functional options to further configure the player
//
// Returns:
//   - Player: the new detached player
func NewPlayer(name string, options ...PlayerBuilderOption) Player {
	p := newPlayer(options...)
	p.Init(p, name)
	return p
}

func newPlayer(options ...PlayerBuilderOption) *player {
	p := &player{logger: log.Default()}
	p.ctrl = &beep.Ctrl{Streamer: beep.StreamerFunc(p.pull), Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 10}
	p.out = beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.volume.Stream(samples)
	})
	for _, option := range options {
		option(p)
	}
	p.applyVolume()
	return p
}

func (p *player) Stream() common.AudioStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream
}

func (p *player) SetStream(s common.AudioStream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stream = s
	p.current = nil
	p.playing = false
	p.ctrl.Paused = true
}

func (p *player) Play(from float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stream.(*Stream)
	if !ok || s == nil {
		p.logger.Printf("[AudioPlayer] %s: no playable stream assigned", p.Name())
		return
	}
	p.current = s.StreamerFrom(from)
	p.from = min(max(from, 0), s.Length())
	p.playing = true
	p.ctrl.Paused = false
}

func (p *player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.current = nil
	p.ctrl.Paused = true
}

func (p *player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *player) PlaybackPosition() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stream.(*Stream)
	if !ok || p.current == nil {
		return 0
	}
	return p.from + s.Format().SampleRate.D(p.current.Position()).Seconds()
}

func (p *player) VolumeDB() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeDB
}

func (p *player) SetVolumeDB(db float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeDB = db
	p.applyVolume()
}

func (p *player) Streamer() beep.Streamer {
	return p.out
}

// applyVolume maps decibels onto the base-10 exponent beep expects: gain = 10^(dB/20).
// Callers hold mu.
func (p *player) applyVolume() {
	db := p.volumeDB + p.extraDB
	p.volume.Volume = db / 20
	p.volume.Silent = db <= silentDB
}

// pull fills samples from the current stream, padding with silence once it ends.
// It runs under mu, inside the output streamer.
func (p *player) pull(samples [][2]float64) (int, bool) {
	n := 0
	if p.playing && p.current != nil {
		var ok bool
		n, ok = p.current.Stream(samples)
		if !ok || n < len(samples) {
			p.playing = false
			p.current = nil
			p.ctrl.Paused = true
		}
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}
