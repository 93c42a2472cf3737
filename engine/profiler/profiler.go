package profiler

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

// Profiler tracks frame rate, stage timings and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval. It is safe for concurrent use.
type Profiler struct {
	mu             sync.Mutex
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stages map[string]*StageStats
	now    func() time.Time
}

// StageStats accumulates the durations recorded for one named stage since the last report.
type StageStats struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average recorded duration, or zero if nothing was recorded.
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// ProfilerOption is a functional option applied in NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick reports.
//
// Parameters:
//   - d: the report interval
//
// Returns:
//   - ProfilerOption: a function that applies the interval to a profiler
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		stages:         make(map[string]*StageStats),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one duration to a named stage.
//
// Parameters:
//   - stage: the stage name, e.g. "raster" or "overlay"
//   - d: the measured duration
func (p *Profiler) Record(stage string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stages[stage]
	if !ok {
		s = &StageStats{}
		p.stages[stage] = s
	}
	s.Count++
	s.Total += d
	s.Max = max(s.Max, d)
}

// Time starts timing a stage and returns the function that records it.
//
//	defer prof.Time("raster")()
//
// Parameters:
//   - stage: the stage name
//
// Returns:
//   - func(): records the elapsed time when called
func (p *Profiler) Time(stage string) func() {
	start := p.now()
	return func() {
		p.Record(stage, p.now().Sub(start))
	}
}

// Stage returns the statistics of a stage accumulated since the last report.
//
// Parameters:
//   - stage: the stage name
//
// Returns:
//   - StageStats: the statistics, zero if the stage was never recorded
func (p *Profiler) Stage(stage string) StageStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.stages[stage]; ok {
		return *s
	}
	return StageStats{}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, per-stage mean and max, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap, TotalAlloc: cumulative (tracks churn), Sys: process footprint
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

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
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	attrs := []any{
		slog.Float64("fps", fps),
		slog.Float64("heap_mb", allocMB),
		slog.Float64("alloc_rate_mb_s", allocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_last_us", lastPauseUs),
		slog.Uint64("gc_max_us", maxPauseUs),
		slog.Float64("sys_mb", sysMB),
	}
	names := make([]string, 0, len(p.stages))
	for name := range p.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := p.stages[name]
		attrs = append(attrs, slog.Group(name,
			slog.Duration("mean", s.Mean()),
			slog.Duration("max", s.Max),
		))
	}
	common.Logger().Info("profiler", attrs...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	clear(p.stages)
	return true
}
