/*
Copyright © 2019 the BGEM authors.
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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/thermomodel/bgem"
)

// ncfDimName returns the NetCDF dimension name for an axis variable;
// dots are not welcome in NetCDF names.
func ncfDimName(variable string) string {
	return strings.Replace(variable, ".", "_", -1)
}

// WriteNetCDF writes the sweep surfaces to w in NetCDF format. Each
// axis becomes a dimension plus a coordinate variable holding its
// sample points. Grid points that did not converge are represented
// by NaN entries; the failure list itself is not stored.
func (r *SweepResult) WriteNetCDF(w *os.File) error {
	dims := make([]string, len(r.Axes))
	lengths := make([]int, len(r.Axes))
	for i, a := range r.Axes {
		dims[i] = ncfDimName(a.Variable)
		lengths[i] = a.Points
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "BGEM parameter sweep result file")
	h.AddAttribute("", "data_version", bgem.Version)

	for i, a := range r.Axes {
		h.AddVariable(dims[i], []string{dims[i]}, []float64{0})
		h.AddAttribute(dims[i], "description", "sample points for "+a.Variable)
		h.AddAttribute(dims[i], "units", AxisUnits(a.Variable))
	}
	for _, name := range r.Variables() {
		h.AddVariable(name, dims, []float64{0})
		h.AddAttribute(name, "description", r.Descriptions[name])
		h.AddAttribute(name, "units", r.Units[name])
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return fmt.Errorf("bgemutil: preparing netcdf header: %v", err)
		}
	}

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for i := range r.Axes {
		if err := writeNCF(f, dims[i], r.AxisValues[i]); err != nil {
			return fmt.Errorf("bgemutil: writing axis %s to netcdf file: %v", dims[i], err)
		}
	}
	for _, name := range r.Variables() {
		if err := writeNCF(f, name, r.Surfaces[name].Elements); err != nil {
			return fmt.Errorf("bgemutil: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	n := 1
	for _, v := range end {
		n *= v
	}
	if len(data) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data))
	}
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data)
	return err
}

// ReadNetCDF reads sweep surfaces from a file written by WriteNetCDF.
func ReadNetCDF(rw cdf.ReaderWriterAt) (*SweepResult, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("bgemutil: opening netcdf sweep file: %v", err)
	}
	version, _ := f.Header.GetAttribute("", "data_version").(string)
	if version != bgem.Version {
		return nil, fmt.Errorf("bgemutil: sweep file version %q is incompatible with the required version %s",
			version, bgem.Version)
	}

	dimNames := f.Header.Dimensions("")
	res := &SweepResult{
		Axes:         make([]SweepAxis, len(dimNames)),
		AxisValues:   make([][]float64, len(dimNames)),
		Surfaces:     make(map[string]*sparse.DenseArray),
		Descriptions: make(map[string]string),
		Units:        make(map[string]string),
	}
	dimIndex := make(map[string]int, len(dimNames))
	for i, d := range dimNames {
		dimIndex[d] = i
	}
	// Reverse the dimension name sanitization.
	axisName := make(map[string]string, len(sweepAxes))
	for name := range sweepAxes {
		axisName[ncfDimName(name)] = name
	}

	for _, v := range f.Header.Variables() {
		lengths := f.Header.Lengths(v)
		n := 1
		for _, l := range lengths {
			n *= l
		}
		rdr := f.Reader(v, nil, nil)
		buf := rdr.Zero(-1)
		if _, err := rdr.Read(buf); err != nil {
			return nil, fmt.Errorf("bgemutil: reading netcdf variable %s: %v", v, err)
		}
		data, ok := buf.([]float64)
		if !ok {
			return nil, fmt.Errorf("bgemutil: netcdf variable %s is not of type float64", v)
		}
		if len(data) != n {
			return nil, fmt.Errorf("bgemutil: netcdf variable %s: dims are %d but array length is %d", v, n, len(data))
		}

		vdims := f.Header.Dimensions(v)
		if len(vdims) == 1 && vdims[0] == v {
			// A coordinate variable describes its own dimension.
			i := dimIndex[v]
			name := v
			if orig, ok := axisName[v]; ok {
				name = orig
			}
			res.AxisValues[i] = data
			res.Axes[i] = SweepAxis{
				Variable: name,
				Start:    data[0],
				End:      data[len(data)-1],
				Points:   len(data),
			}
			continue
		}
		surf := sparse.ZerosDense(lengths...)
		copy(surf.Elements, data)
		res.Surfaces[v] = surf
		if d, ok := f.Header.GetAttribute(v, "description").(string); ok {
			res.Descriptions[v] = d
		}
		if u, ok := f.Header.GetAttribute(v, "units").(string); ok {
			res.Units[v] = u
		}
	}
	return res, nil
}
