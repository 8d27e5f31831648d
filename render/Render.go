// Package render draws per-episode diagnostic strips to PNG images.
// Each render mode selects one strip, and the strips for an episode
// are stacked into a single image.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"

	"github.com/encrush/btgym/runner"
)

// Mode labels a diagnostic strip that can be rendered for an episode
type Mode string

// Available render modes
const (
	ActionProb   Mode = "action_prob"
	ValueFn      Mode = "value_fn"
	Price        Mode = "price"
	ExpertAdvice Mode = "expert_advice"
)

// Strip geometry
const (
	stripWidth   int = 640
	stripHeight  int = 120
	stripPadding int = 8
)

var (
	backgroundShade = color.RGBA{R: 15, G: 18, B: 24, A: 255}
	frameShade      = color.RGBA{R: 90, G: 96, B: 108, A: 255}
	labelShade      = color.RGBA{R: 200, G: 204, B: 210, A: 255}
	seriesShade     = color.RGBA{R: 86, G: 156, B: 214, A: 255}

	// One colour per action, cycled when the environment has more
	// actions than colours
	actionShades = []color.RGBA{
		{R: 120, G: 120, B: 128, A: 255},
		{R: 78, G: 201, B: 106, A: 255},
		{R: 224, G: 108, B: 117, A: 255},
		{R: 229, G: 192, B: 123, A: 255},
	}
)

// A Renderer draws episode traces as stacked diagnostic strips and
// saves them as PNG images in a directory.
type Renderer struct {
	dir        string
	numActions int
	modes      []Mode
}

// New returns a new Renderer saving images to the argument directory.
// The modes parameter selects which strips are drawn and in what
// order.
func New(dir string, numActions int, modes ...Mode) (*Renderer, error) {
	for _, mode := range modes {
		switch mode {
		case ActionProb, ValueFn, Price, ExpertAdvice:
		default:
			return nil, fmt.Errorf("newrenderer: no such render mode %v",
				mode)
		}
	}
	if numActions <= 0 {
		return nil, fmt.Errorf("newrenderer: number of actions must be "+
			"positive \n\twant(> 0)\n\thave(%v)", numActions)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("newrenderer: could not create render "+
			"directory: %v", err)
	}

	return &Renderer{dir: dir, numActions: numActions, modes: modes}, nil
}

// Modes returns the render modes that the Renderer draws
func (r *Renderer) Modes() []Mode {
	return r.modes
}

// Render draws the strips for the argument episode trace and saves
// them to a single PNG named after the episode number. Empty traces
// and empty mode lists are skipped without error.
func (r *Renderer) Render(episode int, trace *runner.Trace) error {
	if trace == nil || trace.Len() == 0 || len(r.modes) == 0 {
		return nil
	}

	height := len(r.modes)*(stripHeight+stripPadding) + stripPadding
	dc := gg.NewContext(stripWidth, height)
	dc.SetColor(backgroundShade)
	dc.Clear()

	for i, mode := range r.modes {
		top := float64(stripPadding + i*(stripHeight+stripPadding))
		r.drawStrip(dc, mode, trace, top)
	}

	name := fmt.Sprintf("episode_%v.png", episode)
	if err := dc.SavePNG(filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("render: could not save image: %v", err)
	}
	return nil
}

// drawStrip draws a single mode's strip with its frame and label
func (r *Renderer) drawStrip(dc *gg.Context, mode Mode,
	trace *runner.Trace, top float64) {
	dc.ClearPath()
	dc.SetColor(frameShade)
	dc.SetLineWidth(1.0)
	dc.DrawRectangle(float64(stripPadding), top,
		float64(stripWidth-2*stripPadding), float64(stripHeight))
	dc.Stroke()

	switch mode {
	case Price:
		r.drawSeries(dc, trace.Prices(), top, seriesShade)
	case ValueFn:
		r.drawSeries(dc, trace.Values(), top, seriesShade)
	case ActionProb:
		for a := 0; a < r.numActions; a++ {
			r.drawSeries(dc, trace.Probs(a), top,
				actionShades[a%len(actionShades)])
		}
	case ExpertAdvice:
		for a := 0; a < r.numActions; a++ {
			r.drawSeries(dc, trace.Advice(a), top,
				actionShades[a%len(actionShades)])
		}
	}

	dc.SetColor(labelShade)
	dc.DrawString(string(mode), float64(2*stripPadding), top+12)
}

// drawSeries draws a single series as a line plot, scaled to fill the
// strip vertically.
func (r *Renderer) drawSeries(dc *gg.Context, series []float64,
	top float64, shade color.RGBA) {
	if len(series) == 0 {
		return
	}

	low := floats.Min(series)
	high := floats.Max(series)
	span := high - low
	if span == 0 {
		// Flat series sit on the strip's midline
		span = 1.0
		low -= 0.5
	}

	left := float64(stripPadding)
	width := float64(stripWidth - 2*stripPadding)
	xStep := width
	if len(series) > 1 {
		xStep = width / float64(len(series)-1)
	}

	dc.ClearPath()
	for i, v := range series {
		x := left + float64(i)*xStep
		y := top + float64(stripHeight)*(1-(v-low)/span)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.SetColor(shade)
	dc.SetLineWidth(1.5)
	dc.Stroke()
}
