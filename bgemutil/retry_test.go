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
	"strings"
	"testing"

	"github.com/thermomodel/bgem"
)

func TestGasifyWithRetry(t *testing.T) {
	s := testScenario()
	got, err := GasifyWithRetry(s, 2)
	if err != nil {
		t.Fatal(err)
	}
	want, err := s.Gasify()
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// A negative retry count behaves like zero.
	got, err = GasifyWithRetry(s, -3)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("with negative retries: got %+v, want %+v", got, want)
	}
}

func TestGasifyWithRetryInputErrors(t *testing.T) {
	t.Run("non-physical temperature", func(t *testing.T) {
		s := testScenario()
		s.Conditions.Temp = -300
		_, err := GasifyWithRetry(s, 2)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "non-physical") {
			t.Errorf("unexpected error: %v", err)
		}
	})
	t.Run("invalid agent", func(t *testing.T) {
		s := testScenario()
		s.Agent.Kind = bgem.AgentKind(9)
		if _, err := GasifyWithRetry(s, 2); err == nil {
			t.Fatal("expected an error")
		}
	})
}

// TestRetrySeedScales checks that every perturbed starting point the
// retry schedule can generate still converges to the same root as the
// default seeds, so a retried solve is a restart rather than a
// different answer.
func TestRetrySeedScales(t *testing.T) {
	const testTolerance = 1.e-8
	s := testScenario()
	balance, err := s.Feed.InputMoles(s.Agent)
	if err != nil {
		t.Fatal(err)
	}
	tempK := s.Conditions.TempK()
	pressureAtm := s.Conditions.PressureAtm()
	want, err := bgem.SolveEquilibrium(balance, tempK, pressureAtm)
	if err != nil {
		t.Fatal(err)
	}
	for _, scale := range seedScales {
		seeds := bgem.DefaultSeeds(balance)
		for i := range seeds {
			seeds[i] *= scale
		}
		got, err := bgem.SolveEquilibriumSeeded(balance, tempK, pressureAtm, seeds)
		if err != nil {
			t.Fatalf("scale %g: %v", scale, err)
		}
		cases := []struct {
			name      string
			got, want float64
		}{
			{"H2", got.H2, want.H2},
			{"CO", got.CO, want.CO},
			{"CO2", got.CO2, want.CO2},
			{"CH4", got.CH4, want.CH4},
			{"H2O", got.H2O, want.H2O},
			{"CCE", got.CarbonConversion, want.CarbonConversion},
		}
		for _, c := range cases {
			if different(c.got, c.want, testTolerance) {
				t.Errorf("scale %g: %s = %v, want %v", scale, c.name, c.got, c.want)
			}
		}
	}
}
