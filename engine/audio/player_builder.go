package audio

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// PlayerBuilderOption is a functional option for configuring a Player or Player3D.
// Use the With* functions to create options.
type PlayerBuilderOption func(p *player)

// WithStream assigns the initial stream.
//
// Parameters:
//   - s: the stream to assign
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithStream(s common.AudioStream) PlayerBuilderOption {
	return func(p *player) {
		p.stream = s
	}
}

// WithVolumeDB sets the initial volume in decibels. Defaults to 0.
//
// Parameters:
//   - db: the volume in decibels
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithVolumeDB(db float64) PlayerBuilderOption {
	return func(p *player) {
		p.volumeDB = db
	}
}

// WithLogger sets the logger used for player diagnostics. Defaults to log.Default().
//
// Parameters:
//   - logger: the logger to write to
//
// Returns:
//   - PlayerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) PlayerBuilderOption {
	return func(p *player) {
		if logger != nil {
			p.logger = logger
		}
	}
}
