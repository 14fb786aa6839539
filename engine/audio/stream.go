// Package audio provides the sound targets audio tracks drive: decoded streams, player nodes
// with dB volume, and a bus that mixes every player into one beep streamer.
package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// DefaultSampleRate is the rate generated streams use when none is given.
const DefaultSampleRate = beep.SampleRate(48000)

// Stream is a fully decoded, seekable sound held in memory.
type Stream struct {
	buffer *beep.Buffer
}

// Ensure Stream implements common.AudioStream interface.
var _ common.AudioStream = &Stream{}

// NewStream drains s into memory.
//
// Parameters:
//   - format: the sample format of s
//   - s: the streamer to buffer; it is read until exhausted
//
// Returns:
//   - *Stream: the buffered stream
func NewStream(format beep.Format, s beep.Streamer) *Stream {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Stream{buffer: buf}
}

// DecodeWAV reads a WAV file fully into memory.
//
// Parameters:
//   - r: the WAV data
//
// Returns:
//   - *Stream: the decoded stream
//   - error: error if the data is not a readable WAV file
func DecodeWAV(r io.Reader) (*Stream, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	defer s.Close()
	return NewStream(format, s), nil
}

// NewToneStream generates a sine tone, mostly useful for tests and demos.
//
// Parameters:
//   - freq: the tone frequency in Hz
//   - duration: the tone length
//   - rate: the sample rate, DefaultSampleRate when zero
//
// Returns:
//   - *Stream: the generated stream
func NewToneStream(freq float64, duration time.Duration, rate beep.SampleRate) *Stream {
	if rate == 0 {
		rate = DefaultSampleRate
	}
	total := rate.N(duration)
	pos := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if pos >= total {
				return i, i > 0
			}
			v := 0.5 * math.Sin(2*math.Pi*freq*float64(pos)/float64(rate))
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})
	return NewStream(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}, tone)
}

// Length returns the stream length in seconds.
func (s *Stream) Length() float64 {
	return s.buffer.Format().SampleRate.D(s.buffer.Len()).Seconds()
}

// Format returns the sample format.
func (s *Stream) Format() beep.Format {
	return s.buffer.Format()
}

// Samples returns the number of sample frames.
func (s *Stream) Samples() int {
	return s.buffer.Len()
}

// StreamerFrom returns a streamer over the samples from the given offset to the end, clamped to
// the stream bounds. Its positions count from the offset.
//
// Parameters:
//   - from: the start offset in seconds
//
// Returns:
//   - beep.StreamSeeker: a streamer over the remaining samples
func (s *Stream) StreamerFrom(from float64) beep.StreamSeeker {
	n := s.buffer.Len()
	start := s.buffer.Format().SampleRate.N(time.Duration(from * float64(time.Second)))
	return s.buffer.Streamer(common.Clamp(start, 0, n), n)
}
