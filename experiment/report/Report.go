// Package report renders data recorded during an experiment as an HTML
// page of charts. Data is loaded from the files written by the
// trackers in the tracker package.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Report accumulates named data series and renders them as a single
// HTML page of line charts.
type Report struct {
	charts []components.Charter
}

// New returns a new, empty Report
func New() *Report {
	return &Report{}
}

// AddSeries adds a chart with a single line to the Report. The title
// parameter sets the chart title, the name parameter names the line,
// and the data parameter holds the line's values, plotted against
// their indices.
func (r *Report) AddSeries(title, name string, data []float64) {
	r.AddSeriesGroup(title, map[string][]float64{name: data})
}

// AddSeriesGroup adds a chart with one line per entry in the series
// map. Lines are named by their map keys and drawn in sorted key
// order so that repeated renders of the same data produce the same
// chart.
func (r *Report) AddSeriesGroup(title string, series map[string][]float64) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	length := 0
	for _, data := range series {
		if len(data) > length {
			length = len(data)
		}
	}

	xAxis := make([]string, length)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i)
	}
	line = line.SetXAxis(xAxis)

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data := series[name]
		items := make([]opts.LineData, len(data))
		for i, value := range data {
			items[i] = opts.LineData{Value: value}
		}
		line.AddSeries(name, items)
	}

	r.charts = append(r.charts, line)
}

// Save renders every chart added to the Report into a single HTML
// file.
func (r *Report) Save(filename string) error {
	if len(r.charts) == 0 {
		return fmt.Errorf("save: no data series to report")
	}

	page := components.NewPage()
	page.AddCharts(r.charts...)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create report file: %v", err)
	}
	defer file.Close()

	if err := page.Render(io.MultiWriter(file)); err != nil {
		return fmt.Errorf("save: could not render report: %v", err)
	}
	return nil
}
