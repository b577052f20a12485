/*
Copyright © 2018 the BGEM authors.
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
	"testing"

	"github.com/thermomodel/bgem/science/equilib"
)

// Air gasification of a woody feed at 800 °C and 1 bar, solved
// through the whole model chain. The reactor pressure is converted
// from bar to the standard atmospheres the equilibrium constants are
// referenced to, so the root differs slightly from a 1 atm solve.
func TestGasify(t *testing.T) {
	const testTolerance = 1.e-8

	r, err := Gasify(baseFeed(), AirAgent(0.25), Conditions{Temp: 800, Pressure: 1})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name      string
		got, want float64
	}{
		{"Balance.C", r.Balance.C, 3.709099991674},
		{"H2", r.Composition.H2, 2.284711191130},
		{"CO", r.Composition.CO, 4.368872305799},
		{"CO2", r.Composition.CO2, 0.2396938405675},
		{"CH4", r.Composition.CH4, 0.4509019792745},
		{"H2O", r.Composition.H2O, 0.02036354268092},
		{"raw char", r.Composition.Raw[iChar], -1.350368133967},
		{"CCE", r.Composition.CarbonConversion, 1},
		{"Dry.H2", r.Properties.Dry.H2, 0.2082825406389},
		{"Dry.CO", r.Properties.Dry.CO, 0.3982822105095},
		{"Dry.N2", r.Properties.Dry.N2, 0.3304780346226},
		{"LHV", r.Properties.LHV, 8.749262586402},
		{"DryVolume", r.Properties.DryVolume, 245.8656231141},
	}
	for _, c := range cases {
		if different(c.got, c.want, testTolerance) {
			t.Errorf("%s: got %g, want %g", c.name, c.got, c.want)
		}
	}
	if r.Constants != equilib.At(r.Conditions.TempK(), r.Conditions.PressureAtm()) {
		t.Error("recorded equilibrium constants do not match the operating point")
	}
}

func TestGasifyZeroFlow(t *testing.T) {
	feed := baseFeed()
	feed.Flow = 0
	r, err := Gasify(feed, AirAgent(0.25), Conditions{Temp: 800, Pressure: 1})
	if err != nil {
		t.Fatal(err)
	}
	if r.Composition != (SyngasComposition{}) {
		t.Errorf("composition: %+v", r.Composition)
	}
	if r.Properties != (SyngasProperties{}) {
		t.Errorf("properties: %+v", r.Properties)
	}
}

func TestGasifyNonPhysical(t *testing.T) {
	if _, err := Gasify(baseFeed(), AirAgent(0.25), Conditions{Temp: -300, Pressure: 1}); err == nil {
		t.Error("expected an error below absolute zero")
	}
	if _, err := Gasify(baseFeed(), AirAgent(0.25), Conditions{Temp: 800, Pressure: 0}); err == nil {
		t.Error("expected an error at zero pressure")
	}
	if _, err := Gasify(baseFeed(), GasifyingAgent{Kind: AgentKind(7)}, Conditions{Temp: 800, Pressure: 1}); err == nil {
		t.Error("expected an error for an unknown agent")
	}
}
