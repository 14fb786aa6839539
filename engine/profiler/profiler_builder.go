package profiler

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often Tick logs a summary. Defaults to one second.
//
// Parameters:
//   - d: the summary interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithRegisterer registers the profiler's collectors on r, e.g. prometheus.DefaultRegisterer.
//
// Parameters:
//   - r: the registerer
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithRegisterer(r prometheus.Registerer) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.registerer = r
	}
}

// WithLogger sets the logger summaries are written to. Defaults to log.Default().
func WithLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
