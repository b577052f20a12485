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
	"fmt"
	"math"

	"github.com/thermomodel/bgem/science/equilib"
	"gonum.org/v1/gonum/floats"
)

// epsMole is the floor applied to non-positive solver seeds. The gas
// species are solved in log coordinates, so their iterates stay
// positive and mole fractions stay defined without further flooring.
const epsMole = 1.e-12

const (
	solverTolerance  = 1.e-10
	solverIterations = 200

	// solverLogStep caps the per-iteration change of the log-space
	// species coordinates, keeping early iterates from overflowing
	// the exponentials.
	solverLogStep = 3.0
)

// SyngasComposition holds the product distribution leaving the
// reactor, after clamping to non-negative moles.
type SyngasComposition struct {
	H2   float64 `desc:"Hydrogen" units:"kmol/h"`
	CO   float64 `desc:"Carbon monoxide" units:"kmol/h"`
	CO2  float64 `desc:"Carbon dioxide" units:"kmol/h"`
	CH4  float64 `desc:"Methane" units:"kmol/h"`
	H2O  float64 `desc:"Water vapor" units:"kmol/h"`
	N2   float64 `desc:"Molecular nitrogen" units:"kmol/h"`
	Char float64 `desc:"Unconverted carbon" units:"kmol/h"`

	// CarbonConversion is the fraction of inlet carbon leaving in
	// the gas phase, in [0, 1].
	CarbonConversion float64 `desc:"Carbon conversion efficiency" units:"-"`

	// Raw is the solver root before the non-negativity clamp,
	// ordered H2, CO, CO2, CH4, H2O, char. A negative raw char
	// means equilibrium favors complete carbon conversion at the
	// operating point; the clamp then introduces a small carbon
	// balance residual, accepted as a modeling approximation.
	Raw [nUnknowns]float64

	// Iterations is the number of Newton steps taken.
	Iterations int
}

// ConvergenceError reports an equilibrium solve that did not reach
// the residual tolerance, carrying the last iterate for diagnostics.
type ConvergenceError struct {
	Iterations int
	Iterate    []float64 // moles, ordered H2, CO, CO2, CH4, H2O, char
	Residual   []float64 // scaled residuals of the six equations
	Reason     error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("bgem: equilibrium solve failed after %d iterations: %v (max residual %.3g)",
		e.Iterations, e.Reason, floats.Norm(e.Residual, math.Inf(1)))
}

// equilibriumSystem builds the residual function for the six-equation
// reactor model: elemental C, H and O balances, each scaled by its
// input, plus the water-gas shift, methanation and Boudouard
// equilibrium conditions in log form. The unknowns are ln(moles) of
// H2, CO, CO2, CH4 and H2O, and char moles directly; N2 is fixed by
// the nitrogen input and enters only the mole-fraction denominator.
func equilibriumSystem(b MoleBalance, n2 float64, k equilib.Constants) residualFunc {
	cScale := math.Max(b.C, 1)
	hScale := math.Max(b.H, 1)
	oScale := math.Max(b.O, 1)
	lnKw := math.Log(k.WGSR)
	lnKb := math.Log(k.Boudouard)
	lnKm := math.Log(k.Methanation)
	return func(y, out []float64) {
		h2 := math.Exp(y[iH2])
		co := math.Exp(y[iCO])
		co2 := math.Exp(y[iCO2])
		ch4 := math.Exp(y[iCH4])
		h2o := math.Exp(y[iH2O])

		out[0] = (co + co2 + ch4 + y[iChar] - b.C) / cScale
		out[1] = (2*h2 + 4*ch4 + 2*h2o - b.H) / hScale
		out[2] = (co + 2*co2 + h2o - b.O) / oScale

		// Char is condensed and excluded from the gas phase.
		lnGas := math.Log(h2 + co + co2 + ch4 + h2o + n2)
		lnXH2 := y[iH2] - lnGas
		lnXCO := y[iCO] - lnGas
		lnXCO2 := y[iCO2] - lnGas
		lnXCH4 := y[iCH4] - lnGas
		lnXH2O := y[iH2O] - lnGas

		out[3] = lnXCO2 + lnXH2 - lnKw - lnXCO - lnXH2O
		out[4] = lnXCH4 + lnXH2O - lnKm - lnXCO - 3*lnXH2
		out[5] = 2*lnXCO - lnKb - lnXCO2
	}
}

// DefaultSeeds returns the heuristic solver starting point as
// fractions of the elemental inputs. The fractions affect the
// iteration path, not the root; callers retrying a failed solve can
// scale them to start elsewhere.
func DefaultSeeds(b MoleBalance) [nUnknowns]float64 {
	return [nUnknowns]float64{
		iH2:   0.2 * b.H,
		iCO:   0.4 * b.C,
		iCO2:  0.1 * b.C,
		iCH4:  0.05 * b.C,
		iH2O:  0.1 * b.O,
		iChar: 0.1 * b.C,
	}
}

func molesFromState(y []float64) [nUnknowns]float64 {
	var m [nUnknowns]float64
	for i := 0; i < nUnknowns-1; i++ {
		m[i] = math.Exp(y[i])
	}
	m[iChar] = y[iChar]
	return m
}

// SolveEquilibrium computes the equilibrium syngas composition for
// the given elemental input balance at temperature tempK [K] and
// pressure pressureAtm [atm], using the default seeds. It returns a
// *ConvergenceError if the nonlinear solve fails.
func SolveEquilibrium(b MoleBalance, tempK, pressureAtm float64) (SyngasComposition, error) {
	return SolveEquilibriumSeeded(b, tempK, pressureAtm, DefaultSeeds(b))
}

// SolveEquilibriumSeeded is SolveEquilibrium with an explicit
// starting point, ordered H2, CO, CO2, CH4, H2O, char [kmol/h].
// Non-positive seed entries are floored at a small epsilon.
func SolveEquilibriumSeeded(b MoleBalance, tempK, pressureAtm float64, seeds [nUnknowns]float64) (SyngasComposition, error) {
	n2 := math.Max(b.N2(), 0)
	if b.C <= 0 && b.H <= 0 && b.O <= 0 {
		// No reacting feed; nothing to solve.
		return SyngasComposition{N2: n2}, nil
	}

	y0 := make([]float64, nUnknowns)
	for i := 0; i < nUnknowns-1; i++ {
		y0[i] = math.Log(math.Max(seeds[i], epsMole))
	}
	y0[iChar] = math.Max(seeds[iChar], epsMole)

	f := equilibriumSystem(b, n2, equilib.At(tempK, pressureAtm))
	y, iterations, residual, err := solveNewton(f, y0, newtonOptions{
		Tolerance:     solverTolerance,
		MaxIterations: solverIterations,
		MaxStep:       solverLogStep,
		DampDims:      nUnknowns - 1,
	})
	raw := molesFromState(y)
	if err != nil {
		return SyngasComposition{}, &ConvergenceError{
			Iterations: iterations,
			Iterate:    raw[:],
			Residual:   residual,
			Reason:     err,
		}
	}

	comp := SyngasComposition{
		H2:         raw[iH2],
		CO:         raw[iCO],
		CO2:        raw[iCO2],
		CH4:        raw[iCH4],
		H2O:        raw[iH2O],
		N2:         n2,
		Char:       math.Max(raw[iChar], 0),
		Raw:        raw,
		Iterations: iterations,
	}
	if b.C > 0 {
		comp.CarbonConversion = math.Min((comp.CO+comp.CO2+comp.CH4)/b.C, 1)
	}
	return comp, nil
}
