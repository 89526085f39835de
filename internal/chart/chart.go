// Package chart draws the per-day statistics as PNG point plots.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sakif/quill/internal/model"
)

// ContentType of every rendered chart.
const ContentType = "image/png"

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

var pointColor = color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff}

// RenderCounter plots one point per day and writes the PNG to w.
func RenderCounter(w io.Writer, title string, points []model.Point) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "day"
	p.Y.Label.Text = "count"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	if len(points) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
	} else {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = float64(pt.Day.Unix())
			xys[i].Y = float64(pt.Count)
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("chart: building scatter: %w", err)
		}
		s.GlyphStyle.Color = pointColor
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.X.Tick.Marker = plot.TimeTicks{Format: model.DayLayout}
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("chart: creating png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: writing png: %w", err)
	}
	return nil
}

// Render is RenderCounter into a byte slice, so a handler can set headers
// only after drawing succeeded.
func Render(title string, points []model.Point) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderCounter(&buf, title, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
