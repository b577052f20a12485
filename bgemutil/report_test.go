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
	"io/ioutil"
	"math"
	"os"
	"strconv"
	"testing"

	"github.com/tealeg/xlsx"
)

// sheetFloat parses the numeric cell at (row, col).
func sheetFloat(t *testing.T, s *xlsx.Sheet, row, col int) float64 {
	v, err := strconv.ParseFloat(s.Cell(row, col).Value, 64)
	if err != nil {
		t.Fatalf("cell (%d, %d) of %s: %v", row, col, s.Name, err)
	}
	return v
}

func TestWriteRunReport(t *testing.T) {
	f, err := ioutil.TempFile("", "bgem")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	rows := []ReportRow{
		{Name: "LHV", Value: 8.75, Units: "MJ/Nm³", Description: "Dry gas lower heating value"},
		{Name: "Char", Value: math.NaN(), Units: "kmol/h", Description: "Unconverted carbon"},
	}
	if err := WriteRunReport(f, testScenario(), rows); err != nil {
		t.Fatal(err)
	}
	f.Close()

	wb, err := xlsx.OpenFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}

	scen, ok := wb.Sheet["Scenario"]
	if !ok {
		t.Fatal("missing Scenario sheet")
	}
	if got := scen.Cell(1, 1).Value; got != "air" {
		t.Errorf("Agent.Kind = %q, want air", got)
	}
	if got := scen.Cell(2, 0).Value; got != "Feed.Flow" {
		t.Errorf("first numeric parameter = %q", got)
	}
	if got := sheetFloat(t, scen, 2, 1); got != 100 {
		t.Errorf("Feed.Flow = %v, want 100", got)
	}

	res, ok := wb.Sheet["Results"]
	if !ok {
		t.Fatal("missing Results sheet")
	}
	if got := res.Cell(1, 0).Value; got != "LHV" {
		t.Errorf("first variable = %q", got)
	}
	if got := sheetFloat(t, res, 1, 1); got != 8.75 {
		t.Errorf("LHV = %v, want 8.75", got)
	}
	if got := res.Cell(1, 2).Value; got != "MJ/Nm³" {
		t.Errorf("LHV units = %q", got)
	}
	// NaN values write as empty cells.
	if got := res.Cell(2, 1).Value; got != "" {
		t.Errorf("NaN cell = %q, want empty", got)
	}
}

func TestWriteSweepReport(t *testing.T) {
	const testTolerance = 1.e-8
	f, err := ioutil.TempFile("", "bgem")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	res := testSweepResult()
	res.Failures = []SweepFailure{{
		Index: []int{0, 2},
		Value: []float64{700, 0.4},
		Err:   "did not converge",
	}}
	if err := WriteSweepReport(f, testScenario(), res); err != nil {
		t.Fatal(err)
	}
	f.Close()

	wb, err := xlsx.OpenFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Scenario", "Sweep", "Summary", "LHV", "Failures"} {
		if _, ok := wb.Sheet[name]; !ok {
			t.Fatalf("missing %s sheet", name)
		}
	}

	sweep := wb.Sheet["Sweep"]
	if got := sweep.Cell(1, 0).Value; got != "Conditions.Temp" {
		t.Errorf("first axis = %q", got)
	}
	if got := sweep.Cell(1, 1).Value; got != "°C" {
		t.Errorf("first axis units = %q", got)
	}
	if got := sheetFloat(t, sweep, 2, 4); got != 3 {
		t.Errorf("second axis points = %v, want 3", got)
	}

	summary := wb.Sheet["Summary"]
	if got := summary.Cell(1, 0).Value; got != "LHV" {
		t.Errorf("summary variable = %q", got)
	}
	if got := sheetFloat(t, summary, 1, 2); got != 5 {
		t.Errorf("N = %v, want 5", got)
	}
	if got := sheetFloat(t, summary, 1, 3); different(got, 4.1, testTolerance) {
		t.Errorf("Mean = %v, want 4.1", got)
	}

	surf := wb.Sheet["LHV"]
	if got := surf.Cell(0, 0).Value; got != "Conditions.Temp \\ Agent.ER" {
		t.Errorf("surface header = %q", got)
	}
	if got := sheetFloat(t, surf, 0, 2); got != 0.3 {
		t.Errorf("second column value = %v, want 0.3", got)
	}
	if got := sheetFloat(t, surf, 1, 1); got != 1.5 {
		t.Errorf("surface[0, 0] = %v, want 1.5", got)
	}
	if got := surf.Cell(1, 3).Value; got != "" {
		t.Errorf("failed point = %q, want empty", got)
	}
	if got := sheetFloat(t, surf, 2, 3); got != 6.5 {
		t.Errorf("surface[1, 2] = %v, want 6.5", got)
	}

	failures := wb.Sheet["Failures"]
	if got := failures.Cell(0, 2).Value; got != "Error" {
		t.Errorf("failures header = %q", got)
	}
	if got := sheetFloat(t, failures, 1, 0); got != 700 {
		t.Errorf("failure temperature = %v, want 700", got)
	}
	if got := failures.Cell(1, 2).Value; got != "did not converge" {
		t.Errorf("failure message = %q", got)
	}
}
