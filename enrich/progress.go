package enrich

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress reports how many words have been looked up so far.
type Progress struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgress creates a tracker for total words that writes a line to
// writer every reportInterval words.
func NewProgress(writer io.Writer, total, reportInterval int) *Progress {
	if writer == nil {
		writer = io.Discard
	}
	return &Progress{
		writer:         writer,
		total:          total,
		reportInterval: max(reportInterval, 1),
	}
}

// Start resets the counter and the clock.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Add advances the counter by delta, capped at the total.
func (p *Progress) Add(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = min(p.current+delta, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Current returns the number of words counted so far.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish writes the final line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start.
func (p *Progress) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *Progress) report() {
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	fmt.Fprintf(p.writer, "\rEnriched: %s/%s (%.1f%%) - %s words/s",
		humanize.Comma(int64(p.current)), humanize.Comma(int64(p.total)),
		percentage, humanize.FtoaWithDigits(rate, 1))
}
