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

// physical constants
const (
	// Molar masses [kg/kmol]
	mwC   = 12.011
	mwH   = 1.008
	mwO   = 15.999
	mwN   = 14.007
	mwS   = 32.06 // kg/kmol, molar mass of sulfur
	mwH2O = 2*mwH + mwO
	mwO2  = 2 * mwO

	// Volumetric lower heating values of the fuel species in dry
	// syngas at 0 °C and 1 atm [MJ/Nm³].
	lhvH2  = 10.79
	lhvCO  = 12.63
	lhvCH4 = 35.80

	// molarVolume is the volume of one kmol of ideal gas at
	// 0 °C and 1 atm [Nm³/kmol].
	molarVolume = 22.414

	// Molar composition of dry air [ratios].
	o2FracAir = 0.21
	n2FracAir = 0.79

	// barPerAtm converts standard atmospheres to bar.
	barPerAtm = 1.01325
)

// Indices of the solver unknowns in iterate and residual vectors.
const (
	iH2 int = iota
	iCO
	iCO2
	iCH4
	iH2O
	iChar
)

// nUnknowns is the size of the equilibrium system: five gas species
// plus unconverted carbon. N2 is not an unknown.
const nUnknowns = 6
