package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Profiler tracks frame rate, animation frame cost and memory statistics.
// Outputs stats to the log at a configurable interval and keeps prometheus collectors for the
// animation frames reported through ObserveFrame.
type Profiler struct {
	mu sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	animFrames  int
	animTime    time.Duration
	animInvalid int

	logger *log.Logger

	registerer   prometheus.Registerer
	framesTotal  prometheus.Counter
	invalidTotal prometheus.Counter
	tracks       prometheus.Gauge
	frameSeconds prometheus.Histogram
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second. Collectors are only registered when a registerer is given.
//
// Parameters:
//   - options: functional options to further configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		logger:         log.Default(),
	}
	for _, opt := range options {
		opt(p)
	}

	factory := promauto.With(p.registerer)
	p.framesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "oxy_anim_frames_total",
		Help: "Total number of animation tree frames processed",
	})
	p.invalidTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "oxy_anim_invalid_frames_total",
		Help: "Number of animation tree frames dropped because the graph was invalid",
	})
	p.tracks = factory.NewGauge(prometheus.GaugeOpts{
		Name: "oxy_anim_tracks",
		Help: "Number of resolved tracks of the last processed tree",
	})
	p.frameSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "oxy_anim_frame_duration_seconds",
		Help:    "Wall time spent processing one animation tree frame",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
	return p
}

// ObserveFrame records one processed animation tree frame. Safe for concurrent use.
//
// Parameters:
//   - elapsed: wall time spent in the frame
//   - tracks: the number of resolved tracks
//   - valid: false when the graph was invalid
func (p *Profiler) ObserveFrame(elapsed time.Duration, tracks int, valid bool) {
	p.framesTotal.Inc()
	p.tracks.Set(float64(tracks))
	p.frameSeconds.Observe(elapsed.Seconds())
	if !valid {
		p.invalidTotal.Inc()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.animFrames++
	p.animTime += elapsed
	if !valid {
		p.animInvalid++
	}
}

// Tick should be called once per idle frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, animation frames with their average cost and invalid count, heap
// usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)
	fps := float64(p.frameCount) / seconds

	var avgMs float64
	if p.animFrames > 0 {
		avgMs = float64(p.animTime.Microseconds()) / 1000 / float64(p.animFrames)
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / seconds

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Printf("[Profiler] FPS: %.2f | Anim: %d frames, %.3f ms avg, %d invalid | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, p.animFrames, avgMs, p.animInvalid, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.animFrames = 0
	p.animTime = 0
	p.animInvalid = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
