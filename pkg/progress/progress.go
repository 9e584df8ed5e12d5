// Package progress provides the observer hook the producer uses to
// report multiget progress. Observers are purely cosmetic and must not
// influence scheduling.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Observer receives progress events for one multiget call.
type Observer interface {
	// Start announces a new run with a descriptive label and the
	// estimated item total. A non-positive total means the length of
	// the input is unknown.
	Start(label string, total int)

	// Advance marks one item as handed to the work queue.
	Advance()

	// Finish closes out the run.
	Finish()
}

// Nop is an Observer that does nothing.
type Nop struct{}

func (Nop) Start(label string, total int) {}
func (Nop) Advance()                      {}
func (Nop) Finish()                       {}

// Bar renders a terminal progress bar.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a terminal progress bar observer.
func NewBar() *Bar {
	return &Bar{}
}

func (b *Bar) Start(label string, total int) {
	if total <= 0 {
		total = -1 // spinner
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}

func (b *Bar) Advance() {
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
