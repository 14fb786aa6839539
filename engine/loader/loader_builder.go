package loader

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithAsset pre-populates the cache.
//
// Parameters:
//   - key: the cache key
//   - asset: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithAsset(key string, asset *Asset) LoaderBuilderOption {
	return func(l *loader) {
		if asset != nil {
			l.assetCache[key] = asset
		}
	}
}

// WithLoopMode sets the loop mode given to every imported clip. glTF carries no loop
// information, so clips default to clip.LoopNone.
func WithLoopMode(mode clip.LoopMode) LoaderBuilderOption {
	return func(l *loader) {
		l.loopMode = mode
	}
}

// WithLogger sets the logger for import summaries and skipped channels. Defaults to
// log.Default().
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
