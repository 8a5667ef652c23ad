package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/glasshouse-ar/reticle/internal/focus"
)

// writeTrajectoryPNG renders the raw hit points and the smoothed trajectory
// on the floor plane (X/Z) to a PNG file.
func writeTrajectoryPNG(path string, ticks []focus.TickTrace) error {
	p := plot.New()
	p.Title.Text = "Focus indicator trajectory"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	var raw, smoothed plotter.XYs
	for _, t := range ticks {
		if !t.HasHit {
			continue
		}
		raw = append(raw, plotter.XY{X: t.HitPosition.X, Y: t.HitPosition.Z})
		smoothed = append(smoothed, plotter.XY{X: t.Smoothed.X, Y: t.Smoothed.Z})
	}
	if len(raw) == 0 {
		return fmt.Errorf("no hits recorded, nothing to plot")
	}

	rawScatter, err := plotter.NewScatter(raw)
	if err != nil {
		return fmt.Errorf("failed to build raw scatter: %w", err)
	}
	rawScatter.GlyphStyle.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	rawScatter.GlyphStyle.Radius = vg.Points(1.5)

	smoothedLine, err := plotter.NewLine(smoothed)
	if err != nil {
		return fmt.Errorf("failed to build smoothed line: %w", err)
	}
	smoothedLine.LineStyle.Color = color.RGBA{B: 200, A: 255}
	smoothedLine.LineStyle.Width = vg.Points(1.5)

	p.Add(rawScatter, smoothedLine)
	p.Legend.Add("raw hits", rawScatter)
	p.Legend.Add("smoothed", smoothedLine)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
