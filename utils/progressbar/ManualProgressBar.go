// Package progressbar prints a terminal progress bar
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// ManualProgressBar is a progress bar driven entirely by its caller,
// with no concurrency of its own. The caller advances the bar with
// Increment and redraws it with Display, typically once per loop
// iteration.
type ManualProgressBar struct {
	width     int
	max       int
	progress  int
	startTime time.Time
}

// NewManualProgressBar returns a new ManualProgressBar that is width
// characters wide and reaches 100% after max Increment calls
func NewManualProgressBar(width, max int) *ManualProgressBar {
	return &ManualProgressBar{
		width:     width,
		max:       max,
		startTime: time.Now(),
	}
}

// Increment advances the bar by one step, saturating at 100%
func (p *ManualProgressBar) Increment() {
	if p.progress < p.max {
		p.progress++
	}
}

// Display prints the progress bar on the current line, overwriting any
// previously displayed bar
func (p *ManualProgressBar) Display() {
	fraction := float64(p.progress) / float64(p.max)
	filled := int(fraction * float64(p.width))
	if filled < 0 {
		filled = 0
	} else if filled > p.width {
		filled = p.width
	}

	elapsed := time.Since(p.startTime)
	var left time.Duration
	if p.progress > 0 {
		left = time.Duration(float64(elapsed) * (1 - fraction) / fraction)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat(" ", p.width-filled)
	fmt.Printf("\n\033[1A\033[K|%v| [%.2f%% | elapsed: %v | left: %v]",
		bar, 100*fraction, elapsed.Truncate(time.Second),
		left.Truncate(time.Second))
}
