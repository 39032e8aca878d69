package profile

import (
	"sync"
	"time"
)

// Profiler accumulates named timings so callers can observe where latency is
// spent. Every embedding-provider, store, and ranker call boundary in the
// engine is wrapped with a timer. State is in-process only and resets on
// restart.
type Profiler struct {
	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	count   int
	totalMs float64
	minMs   float64
	maxMs   float64
}

// Timer is the token returned by StartTimer and consumed by EndTimer.
type Timer struct {
	name  string
	start time.Time
}

// TimerStats summarizes the accumulated series for one timer name.
type TimerStats struct {
	AvgMs   float64
	MinMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{series: make(map[string]*series)}
}

// StartTimer begins a named timing and returns its token.
func (p *Profiler) StartTimer(name string) Timer {
	return Timer{name: name, start: time.Now()}
}

// EndTimer stops a timing, accumulates it into the per-name series, and
// returns the elapsed milliseconds. A zero-valued token is ignored.
func (p *Profiler) EndTimer(t Timer) float64 {
	if t.name == "" {
		return 0
	}
	elapsed := float64(time.Since(t.start)) / float64(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.series[t.name]
	if !ok {
		s = &series{minMs: elapsed, maxMs: elapsed}
		p.series[t.name] = s
	}
	s.count++
	s.totalMs += elapsed
	if elapsed < s.minMs {
		s.minMs = elapsed
	}
	if elapsed > s.maxMs {
		s.maxMs = elapsed
	}
	return elapsed
}

// Track starts a timer and returns a func that ends it, for use with defer:
//
//	defer profiler.Track("store.fetch_candidates")()
func (p *Profiler) Track(name string) func() {
	t := p.StartTimer(name)
	return func() { p.EndTimer(t) }
}

// Stats returns a snapshot of every accumulated series.
func (p *Profiler) Stats() map[string]TimerStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]TimerStats, len(p.series))
	for name, s := range p.series {
		out[name] = TimerStats{
			AvgMs:   s.totalMs / float64(s.count),
			MinMs:   s.minMs,
			MaxMs:   s.maxMs,
			Count:   s.count,
			TotalMs: s.totalMs,
		}
	}
	return out
}

// Reset drops every accumulated series.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series = make(map[string]*series)
}
