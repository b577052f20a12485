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

// Package equilib computes equilibrium constants for the gas-phase
// and heterogeneous reactions governing biomass gasification.
//
// All constants are returned on a mole-fraction basis: values of Kp
// from the Gibbs-energy correlations are corrected by
// (P/P_ref)^(-Δn_gas) where Δn_gas counts gas-phase moles only and
// P_ref is 1 atm. The correlations are valid for temperatures
// between roughly 873 and 1473 K.
package equilib

import "math"

const (
	// rGas is the universal gas constant [J/(mol·K)].
	rGas = 8.314

	// pRef is the reference pressure for Kp [atm].
	pRef = 1.0
)

// WaterGasShift returns the equilibrium constant of the water-gas
// shift reaction
//
//	CO + H2O ⇌ CO2 + H2
//
// at temperature T [K], from the empirical correlation of
// Zainal et al. (2001). The reaction conserves gas-phase moles, so
// the constant is independent of pressure.
func WaterGasShift(T float64) float64 {
	return math.Exp(-2.2562 + 1829.0/T + 0.3546*math.Log(T) -
		1.189e-4*T + 1.936e-8*T*T)
}

// Boudouard returns the mole-fraction equilibrium constant of the
// Boudouard reaction
//
//	C(s) + CO2 ⇌ 2CO
//
// at temperature T [K] and pressure P [atm]. The standard Gibbs
// energy is the linear correlation ΔG° = 171000 − 175.7·T J/mol
// (Basu (2010), Table 5.2). One gas-phase mole is created, so the
// pressure correction is (P_ref/P).
func Boudouard(T, P float64) float64 {
	dG := 171000.0 - 175.7*T
	return math.Exp(-dG/(rGas*T)) * (pRef / P)
}

// Methanation returns the mole-fraction equilibrium constant of
// methane synthesis from CO
//
//	CO + 3H2 ⇌ CH4 + H2O
//
// at temperature T [K] and pressure P [atm], with
// ΔG° = −215930 + 233.0·T J/mol. Two gas-phase moles are consumed,
// so the pressure correction is (P/P_ref)².
func Methanation(T, P float64) float64 {
	dG := -215930.0 + 233.0*T
	return math.Exp(-dG/(rGas*T)) * (P / pRef) * (P / pRef)
}

// CarbonSteam returns the mole-fraction equilibrium constant of the
// heterogeneous water-gas reaction
//
//	C(s) + H2O ⇌ CO + H2
//
// which is the Hess-law composition of the Boudouard and water-gas
// shift reactions. It is provided for reference and diagnostics
// only: its equilibrium is already implied by the solved reaction
// set together with the atomic balances, and adding it to the
// system would over-determine it.
func CarbonSteam(T, P float64) float64 {
	return Boudouard(T, P) * WaterGasShift(T)
}

// CarbonHydrogen returns the mole-fraction equilibrium constant of
// the hydrogasification reaction
//
//	C(s) + 2H2 ⇌ CH4
//
// composed from CarbonSteam and Methanation. Reference and
// diagnostics only, as for CarbonSteam.
func CarbonHydrogen(T, P float64) float64 {
	return CarbonSteam(T, P) * Methanation(T, P)
}

// Constants bundles the equilibrium constants of the solved
// reaction set at one operating point.
type Constants struct {
	WGSR        float64 // CO + H2O ⇌ CO2 + H2
	Boudouard   float64 // C(s) + CO2 ⇌ 2CO
	Methanation float64 // CO + 3H2 ⇌ CH4 + H2O
}

// At returns the solved-system equilibrium constants at temperature
// T [K] and pressure P [atm].
func At(T, P float64) Constants {
	return Constants{
		WGSR:        WaterGasShift(T),
		Boudouard:   Boudouard(T, P),
		Methanation: Methanation(T, P),
	}
}
