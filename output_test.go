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

package bgem

import (
	"math"
	"sort"
	"testing"

	"github.com/Knetic/govaluate"
)

func testResult(t *testing.T) *Result {
	r, err := Gasify(baseFeed(), AirAgent(0.25), Conditions{Temp: 800, Pressure: 1})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestOutputterBuiltins(t *testing.T) {
	const testTolerance = 1.e-12

	r := testResult(t)
	o, err := NewOutputter(map[string]string{
		"H2":  "H2",
		"LHV": "LHV",
		"CCE": "CCE",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d values", len(out))
	}
	if different(out["H2"], r.Composition.H2, testTolerance) {
		t.Errorf("H2: got %g", out["H2"])
	}
	if different(out["LHV"], r.Properties.LHV, testTolerance) {
		t.Errorf("LHV: got %g", out["LHV"])
	}
	if different(out["CCE"], r.Composition.CarbonConversion, testTolerance) {
		t.Errorf("CCE: got %g", out["CCE"])
	}
}

// User-defined variables may reference each other; the holder
// substitutes the defining expressions before evaluation.
func TestOutputterDerived(t *testing.T) {
	const testTolerance = 1.e-12

	r := testResult(t)
	o, err := NewOutputter(map[string]string{
		"Syngas":  "H2 + CO",
		"Energy":  "LHV * DryGas",
		"Quality": "Syngas / DryMoles",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(r)
	if err != nil {
		t.Fatal(err)
	}
	syngas := r.Composition.H2 + r.Composition.CO
	if different(out["Syngas"], syngas, testTolerance) {
		t.Errorf("Syngas: got %g", out["Syngas"])
	}
	if different(out["Energy"], r.Properties.LHV*r.Properties.DryVolume, testTolerance) {
		t.Errorf("Energy: got %g", out["Energy"])
	}
	if different(out["Quality"], syngas/r.Properties.DryMoles, testTolerance) {
		t.Errorf("Quality: got %g", out["Quality"])
	}

	vars := o.ModelVariables()
	sort.Strings(vars)
	want := []string{"CO", "DryGas", "DryMoles", "H2", "LHV"}
	if len(vars) != len(want) {
		t.Fatalf("model variables: %v", vars)
	}
	for i, v := range vars {
		if v != want[i] {
			t.Fatalf("model variables: %v", vars)
		}
	}
}

func TestOutputterFunctions(t *testing.T) {
	const testTolerance = 1.e-12

	r := testResult(t)
	o, err := NewOutputter(map[string]string{
		"LogK": "log(Kwgsr)",
		"Cap":  "min(CCE, 0.5)",
		"Root": "sqrt(abs(Char - 4))",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(r)
	if err != nil {
		t.Fatal(err)
	}
	if different(out["LogK"], math.Log(r.Constants.WGSR), testTolerance) {
		t.Errorf("LogK: got %g", out["LogK"])
	}
	if different(out["Cap"], 0.5, testTolerance) {
		t.Errorf("Cap: got %g", out["Cap"])
	}
	if different(out["Root"], math.Sqrt(math.Abs(r.Composition.Char-4)), testTolerance) {
		t.Errorf("Root: got %g", out["Root"])
	}
}

func TestOutputterCustomFunction(t *testing.T) {
	const testTolerance = 1.e-12

	r := testResult(t)
	o, err := NewOutputter(map[string]string{
		"CO2Mass": "co2mass(CO2)",
	}, map[string]govaluate.ExpressionFunction{
		"co2mass": func(arg ...interface{}) (interface{}, error) {
			return arg[0].(float64) * 44.0, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(r)
	if err != nil {
		t.Fatal(err)
	}
	if different(out["CO2Mass"], r.Composition.CO2*44, testTolerance) {
		t.Errorf("CO2Mass: got %g", out["CO2Mass"])
	}
}

func TestOutputterErrors(t *testing.T) {
	cases := []map[string]string{
		{"2bad": "H2"},            // not an identifier
		{"X-Y": "H2"},             // unsupported characters
		{"Z": "NotAVariable * 2"}, // undefined variable
		{"H2": "CO * 2"},          // redefines a model variable
		{"A": "B", "B": "A"},      // circular reference
		{"Broken": "H2 +* CO"},    // unparsable expression
	}
	for i, vars := range cases {
		if _, err := NewOutputter(vars, nil); err == nil {
			t.Errorf("case %d: expected an error for %v", i, vars)
		}
	}

	// Mapping a model variable to itself is not a redefinition.
	if _, err := NewOutputter(map[string]string{"H2": "H2"}, nil); err != nil {
		t.Errorf("identity mapping: %v", err)
	}
}

func TestOutputterNonNumeric(t *testing.T) {
	r := testResult(t)
	o, err := NewOutputter(map[string]string{"Name": "'wood'"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Output(r); err == nil {
		t.Error("expected an error for a non-numeric result")
	}
}

func TestOutputOptions(t *testing.T) {
	names, descriptions, units := OutputOptions()
	if len(names) != len(descriptions) || len(names) != len(units) {
		t.Fatalf("mismatched lengths: %d, %d, %d", len(names), len(descriptions), len(units))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate variable %s", n)
		}
		seen[n] = true
	}
	for _, want := range []string{"H2", "CO", "LHV", "CCE", "XN2Dry", "Kwgsr"} {
		if !seen[want] {
			t.Errorf("missing variable %s", want)
		}
	}
}
