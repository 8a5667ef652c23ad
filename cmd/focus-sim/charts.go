package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/glasshouse-ar/reticle/internal/focus"
)

// positionChart plots the raw hit X coordinate against the smoothed output
// so the low-pass effect of the position buffer is visible.
func positionChart(ticks []focus.TickTrace) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Raw vs smoothed position (X)",
			Subtitle: "Ticks without a hit are gaps (billboard mode)",
		}),
	)

	xs := make([]string, 0, len(ticks))
	raw := make([]opts.LineData, 0, len(ticks))
	smoothed := make([]opts.LineData, 0, len(ticks))
	for _, t := range ticks {
		xs = append(xs, fmt.Sprintf("%d", t.Tick))
		if t.HasHit {
			raw = append(raw, opts.LineData{Value: t.HitPosition.X})
			smoothed = append(smoothed, opts.LineData{Value: t.Smoothed.X})
		} else {
			raw = append(raw, opts.LineData{Value: nil})
			smoothed = append(smoothed, opts.LineData{Value: nil})
		}
	}

	line.SetXAxis(xs).
		AddSeries("raw", raw).
		AddSeries("smoothed", smoothed)
	return line
}

// scaleChart plots the distance-based scale factor over time.
func scaleChart(ticks []focus.TickTrace) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Indicator scale factor"}),
	)

	xs := make([]string, 0, len(ticks))
	scale := make([]opts.LineData, 0, len(ticks))
	for _, t := range ticks {
		xs = append(xs, fmt.Sprintf("%d", t.Tick))
		if t.HasHit {
			scale = append(scale, opts.LineData{Value: t.Scale})
		} else {
			scale = append(scale, opts.LineData{Value: nil})
		}
	}

	line.SetXAxis(xs).AddSeries("scale", scale)
	return line
}

// displayStateLevel maps display states onto a small ordinal axis so the
// timeline reads as a step function.
func displayStateLevel(s focus.DisplayState) int {
	switch s {
	case focus.DisplayInitializing:
		return 0
	case focus.DisplayBillboard:
		return 1
	case focus.DisplayOffPlane:
		return 2
	case focus.DisplayOnPlane:
		return 3
	case focus.DisplayOnNewPlane:
		return 4
	default:
		return -1
	}
}

// stateChart plots the display-state timeline.
func stateChart(ticks []focus.TickTrace) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Display state timeline",
			Subtitle: "0=initializing 1=billboard 2=off_plane 3=on_plane 4=on_new_plane",
		}),
	)

	xs := make([]string, 0, len(ticks))
	states := make([]opts.LineData, 0, len(ticks))
	for _, t := range ticks {
		xs = append(xs, fmt.Sprintf("%d", t.Tick))
		states = append(states, opts.LineData{Value: displayStateLevel(t.Display)})
	}

	line.SetXAxis(xs).AddSeries("state", states)
	return line
}

// renderDashboard writes all charts onto one page.
func renderDashboard(w io.Writer, ticks []focus.TickTrace) error {
	page := components.NewPage()
	page.AddCharts(
		positionChart(ticks),
		scaleChart(ticks),
		stateChart(ticks),
	)
	return page.Render(w)
}
