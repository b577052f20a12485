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

// Fractions holds syngas mole fractions. In a dry set H2O is zero
// and the remaining entries are normalized over the dry gas.
type Fractions struct {
	H2  float64 `desc:"Hydrogen mole fraction" units:"-"`
	CO  float64 `desc:"Carbon monoxide mole fraction" units:"-"`
	CO2 float64 `desc:"Carbon dioxide mole fraction" units:"-"`
	CH4 float64 `desc:"Methane mole fraction" units:"-"`
	H2O float64 `desc:"Water vapor mole fraction" units:"-"`
	N2  float64 `desc:"Nitrogen mole fraction" units:"-"`
}

// Sum returns the total of all fractions; 1 within rounding for any
// normalized set.
func (f Fractions) Sum() float64 {
	return f.H2 + f.CO + f.CO2 + f.CH4 + f.H2O + f.N2
}

// SyngasProperties holds the derived gas-quality measures for a
// product composition. The heating value is reported on a dry basis,
// the convention of combustion references.
type SyngasProperties struct {
	Dry Fractions `desc:"Dry-basis mole fractions"`
	Wet Fractions `desc:"Wet-basis mole fractions"`

	LHV float64 `desc:"Lower heating value of the dry gas" units:"MJ/Nm³"`

	DryMoles float64 `desc:"Dry gas production" units:"kmol/h"`
	WetMoles float64 `desc:"Wet gas production" units:"kmol/h"`

	DryVolume float64 `desc:"Dry gas production at normal conditions" units:"Nm³/h"`
	WetVolume float64 `desc:"Wet gas production at normal conditions" units:"Nm³/h"`
}

// Properties derives mole fractions, heating value and volumetric
// production from the composition. A composition with no gas-phase
// moles returns the zero value rather than dividing by zero.
func (c SyngasComposition) Properties() SyngasProperties {
	dry := c.H2 + c.CO + c.CO2 + c.CH4 + c.N2
	if dry <= 0 {
		return SyngasProperties{}
	}
	wet := dry + c.H2O

	p := SyngasProperties{
		Dry: Fractions{
			H2:  c.H2 / dry,
			CO:  c.CO / dry,
			CO2: c.CO2 / dry,
			CH4: c.CH4 / dry,
			N2:  c.N2 / dry,
		},
		Wet: Fractions{
			H2:  c.H2 / wet,
			CO:  c.CO / wet,
			CO2: c.CO2 / wet,
			CH4: c.CH4 / wet,
			H2O: c.H2O / wet,
			N2:  c.N2 / wet,
		},
		DryMoles:  dry,
		WetMoles:  wet,
		DryVolume: dry * molarVolume,
		WetVolume: wet * molarVolume,
	}
	p.LHV = p.Dry.H2*lhvH2 + p.Dry.CO*lhvCO + p.Dry.CH4*lhvCH4
	return p
}
