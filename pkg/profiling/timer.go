// Package profiling records coarse phase timings and CPU profiles for a
// single toolchange invocation.
package profiling

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Stopper ends a timed phase.
type Stopper interface {
	Stop()
}

type phase struct {
	name     string
	depth    int
	start    time.Time
	duration time.Duration
}

// Recorder collects phases while enabled. The zero value is disabled.
type Recorder struct {
	mu      sync.Mutex
	enabled bool
	began   time.Time
	open    int
	phases  []*phase
}

var defaultRecorder = &Recorder{}

// Enable turns on the process-wide recorder.
func Enable() { defaultRecorder.Enable() }

// Start begins a phase on the process-wide recorder.
func Start(name string) Stopper { return defaultRecorder.Start(name) }

// Summarize writes the process-wide recorder's phases to w.
func Summarize(w io.Writer) { defaultRecorder.Summarize(w) }

// Enable starts recording. Calling it again keeps earlier phases.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	r.enabled = true
	r.began = time.Now()
}

// Start begins a phase nested under any phase still open.
func (r *Recorder) Start(name string) Stopper {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return noopStopper{}
	}
	p := &phase{name: name, depth: r.open, start: time.Now()}
	r.phases = append(r.phases, p)
	r.open++
	return &phaseStopper{recorder: r, phase: p}
}

// Summarize prints every phase in start order with its share of the total.
func (r *Recorder) Summarize(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	total := time.Since(r.began)
	phases := append([]*phase(nil), r.phases...)
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].start.Before(phases[j].start) })

	fmt.Fprintln(w, "--- Timing ---")
	for _, p := range phases {
		share := 0.0
		if total > 0 {
			share = float64(p.duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "%*s- %s (%v, %.1f%%)\n", p.depth*2, "", p.name, p.duration.Round(100*time.Microsecond), share)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
}

type phaseStopper struct {
	once     sync.Once
	recorder *Recorder
	phase    *phase
}

func (s *phaseStopper) Stop() {
	s.once.Do(func() {
		s.recorder.mu.Lock()
		defer s.recorder.mu.Unlock()
		s.phase.duration = time.Since(s.phase.start)
		if s.recorder.open > 0 {
			s.recorder.open--
		}
	})
}

type noopStopper struct{}

func (noopStopper) Stop() {}
