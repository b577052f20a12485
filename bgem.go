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

// Package bgem implements a zero-dimensional thermochemical
// equilibrium model of biomass gasification. A biomass feed and a
// gasifying agent are converted to an elemental mole balance; the
// equilibrium distribution over H2, CO, CO2, CH4, H2O, N2 and
// unconverted char is then solved from atomic conservation together
// with the water-gas shift, methanation and Boudouard equilibria;
// and gas quality measures are derived from the converged
// composition. The formulation follows Zainal et al. (2001) and
// Basu (2010).
//
// All model functions are pure and safe for concurrent use, so
// parameter sweeps can evaluate operating points in parallel without
// coordination.
package bgem

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thermomodel/bgem/science/equilib"
)

// Version gives the version number.
const Version = "1.2.0"

// Log is the logger the model reports input-range warnings to.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Result collects everything computed for one operating point.
type Result struct {
	Feed       BiomassFeed
	Agent      GasifyingAgent
	Conditions Conditions

	Balance     MoleBalance
	Constants   equilib.Constants
	Composition SyngasComposition
	Properties  SyngasProperties
}

// Gasify runs the full model chain for one operating point: input
// mole balance, equilibrium solve, and property derivation. The
// returned error is a *ConvergenceError if the equilibrium solve
// fails.
func Gasify(feed BiomassFeed, agent GasifyingAgent, cond Conditions) (*Result, error) {
	tempK := cond.TempK()
	pressureAtm := cond.PressureAtm()
	if tempK <= 0 || pressureAtm <= 0 {
		return nil, fmt.Errorf("bgem: non-physical operating point: %g K, %g atm", tempK, pressureAtm)
	}

	balance, err := feed.InputMoles(agent)
	if err != nil {
		return nil, err
	}
	comp, err := SolveEquilibrium(balance, tempK, pressureAtm)
	if err != nil {
		return nil, err
	}
	props := comp.Properties()
	Log.WithFields(logrus.Fields{
		"agent": agent.Kind.String(),
		"tempC": cond.Temp,
		"bar":   cond.Pressure,
		"LHV":   props.LHV,
		"CCE":   comp.CarbonConversion,
	}).Info("gasification equilibrium solved")
	return &Result{
		Feed:        feed,
		Agent:       agent,
		Conditions:  cond,
		Balance:     balance,
		Constants:   equilib.At(tempK, pressureAtm),
		Composition: comp,
		Properties:  props,
	}, nil
}
