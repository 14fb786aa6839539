package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Bus mixes players into a single streamer, ready for speaker.Play or headless pulls.
type Bus struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	players map[Player]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{mixer: &beep.Mixer{}, players: make(map[Player]struct{})}
}

// Add routes players into the bus. Players already on the bus are ignored.
//
// Parameters:
//   - players: the players to mix
func (b *Bus) Add(players ...Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range players {
		if _, ok := b.players[p]; ok {
			continue
		}
		b.players[p] = struct{}{}
		b.mixer.Add(p.Streamer())
	}
}

// Len returns the number of players on the bus.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.players)
}

// Streamer returns the mixed output.
func (b *Bus) Streamer() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.mixer.Stream(samples)
	})
}

// Mix pulls n sample frames from the bus. Used for offline rendering and tests.
//
// Parameters:
//   - n: the number of frames
//
// Returns:
//   - [][2]float64: the mixed frames
func (b *Bus) Mix(n int) [][2]float64 {
	out := make([][2]float64, n)
	b.Streamer().Stream(out)
	return out
}
