/*
Copyright © 2020 the BGEM authors.
This file is part of BGEM.

BGEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGEM.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgemutil

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/ctessum/plotextra"
	"github.com/ctessum/sparse"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	panelWidth   = 9 * vg.Centimeter
	panelHeight  = 7 * vg.Centimeter
	legendHeight = 12 * vg.Millimeter
)

// PlotSweep renders the sweep surfaces to w as a PNG image with one
// panel per output variable: curves for one-dimensional sweeps and
// heatmaps with a high-cut color legend for two-dimensional ones.
func PlotSweep(r *SweepResult, w io.Writer) error {
	names := r.Variables()
	if len(names) == 0 {
		return fmt.Errorf("bgemutil: no sweep surfaces to plot")
	}
	ncols := 1
	if len(names) > 1 {
		ncols = 2
	}
	nrows := (len(names) + ncols - 1) / ncols
	width := vg.Length(ncols) * panelWidth
	height := vg.Length(nrows) * panelHeight

	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(96))
	dc := draw.New(img)
	for k, name := range names {
		row, col := k/ncols, k%ncols
		x0 := vg.Length(col) * panelWidth
		y0 := vg.Length(row) * panelHeight
		cell := draw.Crop(dc, x0, x0+panelWidth-width, height-y0-panelHeight, -y0)
		var err error
		if len(r.Axes) == 1 {
			err = plotCurve(r, name, cell)
		} else {
			err = plotSurface(r, name, cell)
		}
		if err != nil {
			return fmt.Errorf("bgemutil: plotting %s: %v", name, err)
		}
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("bgemutil: writing sweep plot: %v", err)
	}
	return nil
}

// plotCurve draws one output variable of a one-dimensional sweep.
// Failed points leave gaps in the data, not the line.
func plotCurve(r *SweepResult, name string, c draw.Canvas) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = name
	if u := r.Units[name]; u != "" {
		p.Title.Text = fmt.Sprintf("%s (%s)", name, u)
	}
	p.X.Label.Text = fmt.Sprintf("%s (%s)", r.Axes[0].Variable, AxisUnits(r.Axes[0].Variable))

	pts := make(plotter.XYs, 0, r.Axes[0].Points)
	for i, v := range r.Surfaces[name].Elements {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: r.AxisValues[0][i], Y: v})
	}
	if len(pts) > 0 {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.Color = color.NRGBA{A: 255}
		p.Add(l)
	}
	p.Draw(c)
	return nil
}

// plotSurface draws one output variable of a two-dimensional sweep as
// a heatmap over the first two axes, with a color legend below it.
// Failed points plot at the scale floor.
func plotSurface(r *SweepResult, name string, c draw.Canvas) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = name
	if u := r.Units[name]; u != "" {
		p.Title.Text = fmt.Sprintf("%s (%s)", name, u)
	}
	p.X.Label.Text = fmt.Sprintf("%s (%s)", r.Axes[0].Variable, AxisUnits(r.Axes[0].Variable))
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", r.Axes[1].Variable, AxisUnits(r.Axes[1].Variable))

	surf := r.Surfaces[name]
	min, max, ok := finiteRange(surf.Elements)
	if !ok {
		// Nothing converged; draw the empty axes.
		p.Draw(draw.Crop(c, 0, 0, legendHeight, 0))
		return nil
	}
	cut := percentile(surf.Elements, 0.999)
	if max <= min {
		// Constant surfaces need a nonzero scale width.
		max = min + 1
	}
	if cut <= min {
		cut = max
	}

	cm1 := moreland.ExtendedBlackBody()
	cm2, err := moreland.NewLuminance([]color.Color{
		color.NRGBA{G: 176, A: 255},
		color.NRGBA{G: 255, A: 255},
	})
	if err != nil {
		return err
	}
	cm := &plotextra.BrokenColorMap{
		Base:     cm1,
		OverFlow: palette.Reverse(cm2),
	}
	cm.SetMin(min)
	cm.SetMax(max)
	cm.SetHighCut(cut)

	h := plotter.NewHeatMap(sweepGrid{
		x:     r.AxisValues[0],
		y:     r.AxisValues[1],
		z:     surf,
		floor: min,
	}, cm.Palette(255))
	h.Min, h.Max = min, max
	p.Add(h)
	p.Draw(draw.Crop(c, 0, 0, legendHeight, 0))

	return drawLegend(cm, cut, draw.Crop(c, 0, 0, 0, legendHeight-panelHeight))
}

func drawLegend(cm *plotextra.BrokenColorMap, highcut float64, c draw.Canvas) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.X.Scale = plotextra.BrokenScale{
		HighCut:         highcut,
		HighCutFraction: 0.9,
	}
	p.X.Tick.Marker = plotextra.BrokenTicks{
		HighCut: highcut,
	}
	p.HideY()
	p.X.Padding = 0
	p.Draw(c)
	return nil
}

// sweepGrid adapts a sweep surface to the heatmap grid interface.
// The first axis runs along X, the second along Y.
type sweepGrid struct {
	x, y  []float64
	z     *sparse.DenseArray
	floor float64
}

func (g sweepGrid) Dims() (c, r int) { return len(g.x), len(g.y) }

func (g sweepGrid) Z(c, r int) float64 {
	v := g.z.Get(c, r)
	if math.IsNaN(v) {
		return g.floor
	}
	return v
}

func (g sweepGrid) X(c int) float64 { return g.x[c] }

func (g sweepGrid) Y(r int) float64 { return g.y[r] }

func finiteRange(data []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		ok = true
	}
	return min, max, ok
}

// percentile returns percentile p (range [0,1]) of the finite values
// in data.
func percentile(data []float64, p float64) float64 {
	tmp := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			tmp = append(tmp, v)
		}
	}
	sort.Float64s(tmp)
	return tmp[roundInt(p*float64(len(tmp)))-1]
}

// roundInt rounds a float to an integer.
func roundInt(x float64) int {
	return int(x + 0.5)
}
