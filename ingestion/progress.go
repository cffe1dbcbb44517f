package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a single self-updating line as embedding
// batches complete. Increment is safe to call from concurrent workers.
type ProgressTracker struct {
	mu         sync.Mutex
	out        io.Writer
	total      int
	done       int
	step       int
	nextReport int
	startedAt  time.Time
}

// NewProgressTracker reports progress on out every step chunks out of
// total. Nothing is printed until Start is called.
func NewProgressTracker(out io.Writer, total, step int) *ProgressTracker {
	return &ProgressTracker{out: out, total: total, step: step}
}

// Start resets the count and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedAt = time.Now()
	p.done = 0
	p.nextReport = p.step
}

// Increment records delta embedded chunks, printing a progress line
// whenever another reporting step is crossed. The count is clamped to
// the configured total.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return
	}
	p.done += delta
	if p.done > p.total {
		p.done = p.total
	}
	if p.done >= p.nextReport {
		p.render()
		p.nextReport = p.done + p.step
	}
}

// Finish forces the count to total, prints the final line, and ends it
// with a newline so whatever follows starts on a clean line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return
	}
	p.done = p.total
	p.render()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// render writes one carriage-returned progress line. Callers hold mu.
func (p *ProgressTracker) render() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.startedAt).Seconds()
	fmt.Fprintf(p.out, "\rEmbedding: %d/%d chunks (%.1f%%) - %.1f chunks/s", p.done, p.total, pct, rate)
}
