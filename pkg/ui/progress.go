package ui

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar reports download progress in bytes. It satisfies the
// scheduler's Progress interface.
type ProgressBar struct {
	w           io.Writer
	description string
	visible     bool
	written     atomic.Int64
	bar         *progressbar.ProgressBar
}

// NewProgressBar creates a bar writing to w. An invisible bar still counts.
func NewProgressBar(w io.Writer, description string, visible bool) *ProgressBar {
	return &ProgressBar{w: w, description: description, visible: visible}
}

// Start begins a transfer phase of total bytes; total <= 0 shows a spinner
func (p *ProgressBar) Start(total int64) {
	p.written.Store(0)
	if total <= 0 {
		total = -1
	}
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetVisibility(p.visible),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Add records n transferred bytes, or takes them back when n is negative.
// Safe for concurrent use.
func (p *ProgressBar) Add(n int64) {
	p.written.Add(n)
	if p.bar != nil {
		_ = p.bar.Add64(n)
	}
}

// Done ends the phase
func (p *ProgressBar) Done() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Written returns the bytes recorded since Start
func (p *ProgressBar) Written() int64 {
	return p.written.Load()
}
