package audio

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const testRate = beep.SampleRate(1000)

func peak(frames [][2]float64) float64 {
	m := 0.0
	for _, f := range frames {
		m = max(m, math.Abs(f[0]))
	}
	return m
}

func TestToneStreamLength(t *testing.T) {
	s := NewToneStream(100, 2*time.Second, testRate)
	if s.Samples() != 2000 {
		t.Fatalf("Samples = %d, want 2000", s.Samples())
	}
	if math.Abs(s.Length()-2) > 1e-9 {
		t.Errorf("Length = %v, want 2", s.Length())
	}
	if got := s.StreamerFrom(1.5).Len(); got != 500 {
		t.Errorf("streamer len = %d, want 500", got)
	}
	if got := s.StreamerFrom(5).Len(); got != 0 {
		t.Errorf("streamer past end len = %d, want 0", got)
	}
}

func TestPlayerPlaysAndEnds(t *testing.T) {
	s := NewToneStream(100, 100*time.Millisecond, testRate)
	p := NewPlayer("Speaker", WithStream(s))
	bus := NewBus()
	bus.Add(p, p)
	if bus.Len() != 1 {
		t.Fatalf("bus Len = %d, want 1", bus.Len())
	}

	if got := peak(bus.Mix(50)); got != 0 {
		t.Errorf("stopped player produced %v", got)
	}

	p.Play(0.05)
	if !p.IsPlaying() || math.Abs(p.PlaybackPosition()-0.05) > 1e-9 {
		t.Fatalf("playing=%v position=%v", p.IsPlaying(), p.PlaybackPosition())
	}
	if got := peak(bus.Mix(40)); got == 0 {
		t.Errorf("playing player produced silence")
	}
	// 10 frames remain; pulling past them ends playback.
	bus.Mix(20)
	if p.IsPlaying() {
		t.Errorf("player still playing after stream end")
	}

	p.Play(0)
	p.Stop()
	if p.IsPlaying() || peak(bus.Mix(10)) != 0 {
		t.Errorf("Stop did not silence the player")
	}
}

func TestVolume(t *testing.T) {
	s := NewToneStream(100, time.Second, testRate)
	loud := NewPlayer("Loud", WithStream(s))
	quiet := NewPlayer3D("Quiet", WithStream(s), WithVolumeDB(-6))
	quiet.SetUnitDB(-14)

	loud.Play(0)
	quiet.Play(0)
	a := make([][2]float64, 100)
	b := make([][2]float64, 100)
	loud.Streamer().Stream(a)
	quiet.Streamer().Stream(b)

	ratio := peak(b) / peak(a)
	if math.Abs(ratio-0.1) > 1e-6 {
		t.Errorf("-20 dB gain ratio = %v, want 0.1", ratio)
	}

	quiet.SetUnitDB(-100)
	quiet.Streamer().Stream(b)
	if peak(b) != 0 {
		t.Errorf("muted player produced %v", peak(b))
	}
	if quiet.UnitDB() != -100 || quiet.VolumeDB() != -6 {
		t.Errorf("UnitDB=%v VolumeDB=%v", quiet.UnitDB(), quiet.VolumeDB())
	}
}

func TestPlayWithoutStream(t *testing.T) {
	p := NewPlayer("Empty")
	p.Play(0)
	if p.IsPlaying() {
		t.Errorf("player without stream reports playing")
	}
}

func TestDecodeWAV(t *testing.T) {
	tone := NewToneStream(100, 500*time.Millisecond, testRate)
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, tone.StreamerFrom(0), tone.Format()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	s, err := DecodeWAV(in)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples() != 500 || math.Abs(s.Length()-0.5) > 1e-9 {
		t.Errorf("decoded %d samples, length %v; want 500, 0.5", s.Samples(), s.Length())
	}
	if s.Format().SampleRate != testRate {
		t.Errorf("sample rate = %v, want %v", s.Format().SampleRate, testRate)
	}

	if _, err := DecodeWAV(strings.NewReader("not a wav file")); err == nil {
		t.Error("garbage decoded without error")
	}
}
