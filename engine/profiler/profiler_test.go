package profiler

import (
	"testing"
	"time"
)

func TestTickMovingAverage(t *testing.T) {
	p := NewProfiler(time.Hour)
	start := time.Unix(0, 0)

	if p.Tick(start) {
		t.Fatal("first Tick() logged stats")
	}
	if got := p.AverageFrameTime(); got != 0 {
		t.Fatalf("AverageFrameTime() after first tick = %v, want 0", got)
	}

	now := start.Add(10 * time.Millisecond)
	p.Tick(now)
	if got := p.AverageFrameTime(); got != 10*time.Millisecond {
		t.Fatalf("AverageFrameTime() = %v, want 10ms", got)
	}

	now = now.Add(20 * time.Millisecond)
	p.Tick(now)
	// 0.9*10ms + 0.1*20ms
	if got, want := p.AverageFrameTime(), 11*time.Millisecond; got != want {
		t.Errorf("AverageFrameTime() = %v, want %v", got, want)
	}
	if got := p.FPS(); got < 90.9 || got > 91 {
		t.Errorf("FPS() = %v, want ~90.9", got)
	}
}

func TestTickReportInterval(t *testing.T) {
	p := NewProfiler(100 * time.Millisecond)
	now := time.Unix(0, 0)
	p.Tick(now)

	reports := 0
	for range 25 {
		now = now.Add(10 * time.Millisecond)
		if p.Tick(now) {
			reports++
		}
	}
	if reports != 2 {
		t.Errorf("reports = %d, want 2", reports)
	}
}

func TestNewProfilerDefaultInterval(t *testing.T) {
	if p := NewProfiler(0); p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want 1s", p.updateInterval)
	}
}
