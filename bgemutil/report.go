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
	"io"
	"math"

	"github.com/tealeg/xlsx"
)

// ReportRow is one line of a run report table.
type ReportRow struct {
	Name        string
	Value       float64
	Units       string
	Description string
}

// WriteRunReport writes a single-run report workbook to w with a
// scenario sheet and a results sheet.
func WriteRunReport(w io.Writer, s *Scenario, rows []ReportRow) error {
	f := xlsx.NewFile()
	if err := writeScenarioSheet(f, s); err != nil {
		return fmt.Errorf("bgemutil: writing scenario sheet: %v", err)
	}
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return fmt.Errorf("bgemutil: writing results sheet: %v", err)
	}
	header := sheet.AddRow()
	for _, h := range []string{"Variable", "Value", "Units", "Description"} {
		header.AddCell().Value = h
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r.Name
		setNumber(row.AddCell(), r.Value)
		row.AddCell().Value = r.Units
		row.AddCell().Value = r.Description
	}
	return f.Write(w)
}

// WriteSweepReport writes a sweep report workbook to w: the base
// scenario, the axis definitions, per-variable summary statistics,
// one sheet per output surface, and any convergence failures.
func WriteSweepReport(w io.Writer, s *Scenario, r *SweepResult) error {
	f := xlsx.NewFile()
	if err := writeScenarioSheet(f, s); err != nil {
		return fmt.Errorf("bgemutil: writing scenario sheet: %v", err)
	}
	if err := writeAxesSheet(f, r); err != nil {
		return fmt.Errorf("bgemutil: writing sweep sheet: %v", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		return fmt.Errorf("bgemutil: writing summary sheet: %v", err)
	}
	for _, name := range r.Variables() {
		if err := writeSurfaceSheet(f, r, name); err != nil {
			return fmt.Errorf("bgemutil: writing sheet for %s: %v", name, err)
		}
	}
	if len(r.Failures) > 0 {
		if err := writeFailuresSheet(f, r); err != nil {
			return fmt.Errorf("bgemutil: writing failures sheet: %v", err)
		}
	}
	return f.Write(w)
}

// setNumber fills a numeric cell. Excel has no numeric NaN; failed
// values stay blank.
func setNumber(c *xlsx.Cell, v float64) {
	if math.IsNaN(v) {
		return
	}
	c.SetFloat(v)
}

func writeScenarioSheet(f *xlsx.File, s *Scenario) error {
	sheet, err := f.AddSheet("Scenario")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	header.AddCell().Value = "Parameter"
	header.AddCell().Value = "Value"

	row := sheet.AddRow()
	row.AddCell().Value = "Agent.Kind"
	row.AddCell().Value = s.Agent.Kind.String()

	for _, p := range []struct {
		name  string
		value float64
	}{
		{"Feed.Flow", s.Feed.Flow},
		{"Feed.C", s.Feed.C},
		{"Feed.H", s.Feed.H},
		{"Feed.O", s.Feed.O},
		{"Feed.N", s.Feed.N},
		{"Feed.S", s.Feed.S},
		{"Feed.Moisture", s.Feed.Moisture},
		{"Feed.Ash", s.Feed.Ash},
		{"Feed.LHV", s.Feed.LHV},
		{"Agent.ER", s.Agent.ER},
		{"Agent.SteamRatio", s.Agent.SteamRatio},
		{"Agent.OxygenRatio", s.Agent.OxygenRatio},
		{"Conditions.Temp", s.Conditions.Temp},
		{"Conditions.Pressure", s.Conditions.Pressure},
		{"Engine.Efficiency", s.Engine.Efficiency},
		{"Engine.Hours", s.Engine.Hours},
	} {
		row := sheet.AddRow()
		row.AddCell().Value = p.name
		row.AddCell().SetFloat(p.value)
	}
	return nil
}

func writeAxesSheet(f *xlsx.File, r *SweepResult) error {
	sheet, err := f.AddSheet("Sweep")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range []string{"Variable", "Units", "Start", "End", "Points"} {
		header.AddCell().Value = h
	}
	for _, a := range r.Axes {
		row := sheet.AddRow()
		row.AddCell().Value = a.Variable
		row.AddCell().Value = AxisUnits(a.Variable)
		row.AddCell().SetFloat(a.Start)
		row.AddCell().SetFloat(a.End)
		row.AddCell().SetInt(a.Points)
	}
	return nil
}

func writeSummarySheet(f *xlsx.File, r *SweepResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	cols := []string{"Variable", "Units", "N", "Mean", "StdDev", "Min", "Max"}
	if len(r.Axes) == 1 {
		cols = append(cols, "Slope", "Intercept", "RSquared")
	}
	for _, h := range cols {
		header.AddCell().Value = h
	}
	summary := r.Summary()
	for _, name := range r.Variables() {
		st := summary[name]
		row := sheet.AddRow()
		row.AddCell().Value = name
		row.AddCell().Value = r.Units[name]
		row.AddCell().SetInt(st.N)
		setNumber(row.AddCell(), st.Mean)
		setNumber(row.AddCell(), st.StdDev)
		setNumber(row.AddCell(), st.Min)
		setNumber(row.AddCell(), st.Max)
		if len(r.Axes) == 1 {
			setNumber(row.AddCell(), st.Slope)
			setNumber(row.AddCell(), st.Intercept)
			setNumber(row.AddCell(), st.RSquared)
		}
	}
	return nil
}

func writeSurfaceSheet(f *xlsx.File, r *SweepResult, name string) error {
	// Sheet names cap at 31 characters in Excel.
	title := name
	if len(title) > 31 {
		title = title[:31]
	}
	sheet, err := f.AddSheet(title)
	if err != nil {
		return err
	}
	surf := r.Surfaces[name]
	if len(r.Axes) == 1 {
		header := sheet.AddRow()
		header.AddCell().Value = r.Axes[0].Variable
		header.AddCell().Value = name
		for i, x := range r.AxisValues[0] {
			row := sheet.AddRow()
			row.AddCell().SetFloat(x)
			setNumber(row.AddCell(), surf.Elements[i])
		}
		return nil
	}
	// Matrix layout: the first axis runs down the rows, the second
	// across the columns.
	header := sheet.AddRow()
	header.AddCell().Value = r.Axes[0].Variable + " \\ " + r.Axes[1].Variable
	for _, y := range r.AxisValues[1] {
		header.AddCell().SetFloat(y)
	}
	for i, x := range r.AxisValues[0] {
		row := sheet.AddRow()
		row.AddCell().SetFloat(x)
		for j := range r.AxisValues[1] {
			setNumber(row.AddCell(), surf.Get(i, j))
		}
	}
	return nil
}

func writeFailuresSheet(f *xlsx.File, r *SweepResult) error {
	sheet, err := f.AddSheet("Failures")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, a := range r.Axes {
		header.AddCell().Value = a.Variable
	}
	header.AddCell().Value = "Error"
	for _, fl := range r.Failures {
		row := sheet.AddRow()
		for _, v := range fl.Value {
			row.AddCell().SetFloat(v)
		}
		row.AddCell().Value = fl.Err
	}
	return nil
}
