package player

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
)

// AnimationPlayerBuilderOption is a functional option for configuring an AnimationPlayer.
// Use the With* functions to create options.
type AnimationPlayerBuilderOption func(p *animationPlayer)

// WithAnimations adds clips to the library keyed by their own names. Duplicates are logged and
// skipped.
//
// Parameters:
//   - clips: the clips to add
//
// Returns:
//   - AnimationPlayerBuilderOption: option function to apply
func WithAnimations(clips ...clip.Clip) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		for _, c := range clips {
			if err := p.AddAnimation(c.Name(), c); err != nil {
				p.logger.Printf("[AnimationPlayer] %v", err)
			}
		}
	}
}

// WithRootNode sets the path, relative to the player, that track paths start from.
// Defaults to "..".
//
// Parameters:
//   - path: the textual root node path
//
// Returns:
//   - AnimationPlayerBuilderOption: option function to apply
func WithRootNode(path string) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.rootNode = common.ParseNodePath(path)
	}
}

// WithSpeedScale sets the playback rate multiplier. Defaults to 1.
//
// Parameters:
//   - s: the rate multiplier
//
// Returns:
//   - AnimationPlayerBuilderOption: option function to apply
func WithSpeedScale(s float64) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.speed = s
	}
}

// WithLogger sets the logger used for player diagnostics. Defaults to log.Default().
//
// Parameters:
//   - logger: the logger to write to
//
// Returns:
//   - AnimationPlayerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		if logger != nil {
			p.logger = logger
		}
	}
}
