package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
)

// smoothing is the weight of the newest sample in the frame-time average.
const smoothing = 0.1

// Profiler tracks a moving average of frame time and memory statistics.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastFrame      time.Time
	lastReport     time.Time
	updateInterval time.Duration
	avgFrame       time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - updateInterval: how often stats are logged, 1 second when zero or negative
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(updateInterval time.Duration) *Profiler {
	if updateInterval <= 0 {
		updateInterval = time.Second
	}
	return &Profiler{updateInterval: updateInterval}
}

// AverageFrameTime returns the smoothed frame time, avg = 0.9*avg + 0.1*dt.
func (p *Profiler) AverageFrameTime() time.Duration {
	return p.avgFrame
}

// FPS returns the frame rate implied by the smoothed frame time, 0 before the second tick.
func (p *Profiler) FPS() float64 {
	if p.avgFrame <= 0 {
		return 0
	}
	return float64(time.Second) / float64(p.avgFrame)
}

// Tick should be called once per loop iteration, whether or not the iteration rendered.
// The first tick only records the time. Stats are logged when the update interval has elapsed.
//
// Parameters:
//   - now: the frame timestamp
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(now time.Time) bool {
	if p.lastFrame.IsZero() {
		p.lastFrame = now
		p.lastReport = now
		return false
	}

	dt := now.Sub(p.lastFrame)
	p.lastFrame = now
	p.frameCount++
	if p.avgFrame == 0 {
		p.avgFrame = dt
	} else {
		p.avgFrame = time.Duration((1-smoothing)*float64(p.avgFrame) + smoothing*float64(dt))
	}

	elapsed := now.Sub(p.lastReport)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var maxPause time.Duration
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	common.Logger().Info("profiler",
		"frames", p.frameCount,
		"frame_ms", float64(p.avgFrame.Microseconds())/1000,
		"fps", p.FPS(),
		"heap_mb", float64(p.memStats.Alloc)/1024/1024,
		"alloc_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_max_pause", maxPause)

	p.frameCount = 0
	p.lastReport = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
