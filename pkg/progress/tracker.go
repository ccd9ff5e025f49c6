// Package progress reports byte-level progress for long CLI runs. A
// Tracker is owned by the command that started it; nothing here is
// process-global, so concurrent pipelines can each carry their own.
package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker accumulates processed bytes and periodically prints a
// human-readable status line until stopped.
type Tracker struct {
	processed atomic.Uint64
	total     uint64
	out       io.Writer
	interval  time.Duration

	mu       sync.Mutex
	done     chan struct{}
	finished chan struct{}
	running  bool
}

// New creates a tracker for total expected bytes (0 when unknown) writing
// status lines to out. Call Start to begin reporting.
func New(total uint64, out io.Writer) *Tracker {
	if total == 0 {
		total = 1 // avoid division by zero
	}
	return &Tracker{total: total, out: out, interval: time.Second}
}

// Start launches the reporting loop. Starting a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.done = make(chan struct{})
	t.finished = make(chan struct{})
	t.running = true
	go t.loop(t.done, t.finished)
}

// Stop ends the reporting loop and blocks until the summary line has been
// written, so callers can read the output right after.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	close(t.done)
	<-t.finished
	t.running = false
}

// Add records n processed bytes.
func (t *Tracker) Add(n uint64) {
	if n > 0 {
		t.processed.Add(n)
	}
}

// Processed returns the byte count recorded so far.
func (t *Tracker) Processed() uint64 {
	return t.processed.Load()
}

func (t *Tracker) loop(done, finished chan struct{}) {
	defer close(finished)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	start := time.Now()
	var prev uint64

	for {
		select {
		case <-ticker.C:
			current := t.processed.Load()
			rate := uint64(float64(current-prev) / t.interval.Seconds())
			prev = current
			percentage := float64(current) / float64(t.total) * 100
			if t.total > 1 {
				fmt.Fprintf(t.out, "processed %s of %s (%.1f%%) at %s\n",
					FormatSize(current), FormatSize(t.total), percentage, formatRate(rate))
			} else {
				fmt.Fprintf(t.out, "processed %s at %s\n", FormatSize(current), formatRate(rate))
			}
		case <-done:
			elapsed := time.Since(start).Seconds()
			if elapsed < 0.001 {
				elapsed = 0.001
			}
			total := t.processed.Load()
			fmt.Fprintf(t.out, "done: %s in %.1fs (avg %s)\n",
				FormatSize(total), elapsed, formatRate(uint64(float64(total)/elapsed)))
			return
		}
	}
}

// FormatSize returns a human-readable byte count, e.g. "1.5 MiB".
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatRate(bytesPerSec uint64) string {
	return FormatSize(bytesPerSec) + "/s"
}

// Writer counts bytes flowing through it into the tracker.
type Writer struct {
	W io.Writer
	T *Tracker
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.W.Write(p)
	if err == nil && n > 0 {
		w.T.Add(uint64(n))
	}
	return n, err
}
