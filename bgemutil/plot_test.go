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
	"bytes"
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

func checkPNG(t *testing.T, b *bytes.Buffer) {
	if b.Len() < 8 {
		t.Fatalf("plot is only %d bytes", b.Len())
	}
	if !bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")) {
		t.Errorf("plot does not start with the PNG signature: % x", b.Bytes()[:8])
	}
}

func TestPlotSweep(t *testing.T) {
	t.Run("two dimensions", func(t *testing.T) {
		var b bytes.Buffer
		if err := PlotSweep(testSweepResult(), &b); err != nil {
			t.Fatal(err)
		}
		checkPNG(t, &b)
	})

	t.Run("one dimension", func(t *testing.T) {
		surf := sparse.ZerosDense(3)
		copy(surf.Elements, []float64{8.5, math.NaN(), 9.0})
		res := &SweepResult{
			Axes:       []SweepAxis{{Variable: "Conditions.Temp", Start: 700, End: 900, Points: 3}},
			AxisValues: [][]float64{{700, 800, 900}},
			Surfaces:   map[string]*sparse.DenseArray{"LHV": surf},
			Units:      map[string]string{"LHV": "MJ/Nm³"},
		}
		var b bytes.Buffer
		if err := PlotSweep(res, &b); err != nil {
			t.Fatal(err)
		}
		checkPNG(t, &b)
	})

	t.Run("no surfaces", func(t *testing.T) {
		res := &SweepResult{
			Axes:     []SweepAxis{{Variable: "Conditions.Temp", Start: 700, End: 900, Points: 3}},
			Surfaces: map[string]*sparse.DenseArray{},
		}
		if err := PlotSweep(res, new(bytes.Buffer)); err == nil {
			t.Error("expected an error for an empty result")
		}
	})
}

func TestFiniteRange(t *testing.T) {
	min, max, ok := finiteRange([]float64{math.NaN(), 2, -1})
	if !ok || min != -1 || max != 2 {
		t.Errorf("got (%v, %v, %v), want (-1, 2, true)", min, max, ok)
	}
	if _, _, ok := finiteRange([]float64{math.NaN(), math.NaN()}); ok {
		t.Error("all-NaN data should not report a range")
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	if got := percentile(data, 0.5); got != 2 {
		t.Errorf("median = %v, want 2", got)
	}
	if got := percentile(data, 0.999); got != 4 {
		t.Errorf("p99.9 = %v, want 4", got)
	}
}
