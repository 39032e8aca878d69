package profile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_StartEndTimer(t *testing.T) {
	p := NewProfiler()

	timer := p.StartTimer("store.fetch_candidates")
	time.Sleep(2 * time.Millisecond)
	elapsed := p.EndTimer(timer)
	assert.Greater(t, elapsed, 0.0)

	stats := p.Stats()
	require.Contains(t, stats, "store.fetch_candidates")
	s := stats["store.fetch_candidates"]
	assert.Equal(t, 1, s.Count)
	assert.Greater(t, s.AvgMs, 0.0)
	assert.Equal(t, s.MinMs, s.MaxMs)
}

func TestProfiler_AccumulatesSeries(t *testing.T) {
	p := NewProfiler()

	for i := 0; i < 3; i++ {
		timer := p.StartTimer("provider.encode_query")
		time.Sleep(time.Millisecond)
		p.EndTimer(timer)
	}

	s := p.Stats()["provider.encode_query"]
	assert.Equal(t, 3, s.Count)
	assert.LessOrEqual(t, s.MinMs, s.AvgMs)
	assert.LessOrEqual(t, s.AvgMs, s.MaxMs)
	assert.InDelta(t, s.TotalMs, s.AvgMs*3, 1e-9)
}

func TestProfiler_ZeroTimerIgnored(t *testing.T) {
	p := NewProfiler()
	assert.Equal(t, 0.0, p.EndTimer(Timer{}))
	assert.Empty(t, p.Stats())
}

func TestProfiler_Track(t *testing.T) {
	p := NewProfiler()

	func() {
		defer p.Track("rank.vector")()
		time.Sleep(time.Millisecond)
	}()

	s := p.Stats()["rank.vector"]
	assert.Equal(t, 1, s.Count)
	assert.Greater(t, s.TotalMs, 0.0)
}

func TestProfiler_Reset(t *testing.T) {
	p := NewProfiler()
	p.EndTimer(p.StartTimer("anything"))
	require.NotEmpty(t, p.Stats())

	p.Reset()
	assert.Empty(t, p.Stats())

	// Usable after Reset.
	p.EndTimer(p.StartTimer("anything"))
	assert.Equal(t, 1, p.Stats()["anything"].Count)
}

func TestProfiler_Concurrent(t *testing.T) {
	p := NewProfiler()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p.EndTimer(p.StartTimer("shared"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, p.Stats()["shared"].Count)
}
