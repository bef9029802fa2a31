package profiler

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// WindowSize is the number of frame times kept for the rolling statistics.
const WindowSize = 60

// Stats summarises the frame times currently in the window.
type Stats struct {
	Samples int
	Mean    time.Duration
	Min     time.Duration
	Max     time.Duration
	// FPS is the frame rate implied by Mean, or 0 with no samples.
	FPS float64
}

// Profiler keeps a rolling window of frame times and periodically logs them together with
// memory statistics at debug level.
type Profiler struct {
	samples [WindowSize]time.Duration
	next    int
	count   int

	now            func() time.Time
	lastLog        time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. The log interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastLog = p.now()
	return p
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithLogInterval sets how often statistics are logged. Zero or less disables logging.
func WithLogInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// Record adds one frame time to the window, evicting the oldest once the window is full,
// and logs when the interval has elapsed.
//
// Parameters:
//   - frame: the time the frame took
//
// Returns:
//   - bool: true if stats were logged by this call
func (p *Profiler) Record(frame time.Duration) bool {
	p.samples[p.next] = frame
	p.next = (p.next + 1) % WindowSize
	if p.count < WindowSize {
		p.count++
	}

	if p.updateInterval <= 0 {
		return false
	}
	now := p.now()
	elapsed := now.Sub(p.lastLog)
	if elapsed < p.updateInterval {
		return false
	}
	p.log(elapsed)
	p.lastLog = now
	return true
}

// Stats returns the statistics of the current window.
func (p *Profiler) Stats() Stats {
	if p.count == 0 {
		return Stats{}
	}
	s := Stats{Samples: p.count, Min: p.samples[0], Max: p.samples[0]}
	var total time.Duration
	for _, d := range p.samples[:p.count] {
		total += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Mean = total / time.Duration(p.count)
	if s.Mean > 0 {
		s.FPS = float64(time.Second) / float64(s.Mean)
	}
	return s
}

// Reset empties the window.
func (p *Profiler) Reset() {
	p.next, p.count = 0, 0
}

func (p *Profiler) log(elapsed time.Duration) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	runtime.ReadMemStats(&p.memStats)

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	s := p.Stats()
	slog.Debug("frame stats",
		"fps", s.FPS,
		"mean", s.Mean,
		"max", s.Max,
		"heap_mb", float64(p.memStats.Alloc)/1024/1024,
		"alloc_mb_per_s", allocRateMB,
		"gc", gcCount,
		"gc_max_pause_us", maxPauseUs,
	)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
