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

// Package power estimates the electricity production, combustion CO2
// and plant efficiency of an engine-generator burning the product gas
// of a gasifier. Rates are carried as dimensioned quantities where
// they cross between energy and power, and as the plain report units
// (MJ/h, kWh, kg) where they are written out.
package power

import (
	"fmt"

	"github.com/ctessum/unit"

	"github.com/thermomodel/bgem"
)

const (
	// kWhPerMJ converts megajoules to kilowatt hours in the
	// electricity reports.
	kWhPerMJ = 0.2778

	// mwCO2 is the molar weight of carbon dioxide [kg/kmol].
	mwCO2 = 44.0

	joulesPerMJ    = 1.0e6
	secondsPerHour = 3600.0
)

// SyngasEnergy returns the chemical energy rate of the dry product
// gas [MJ/h].
func SyngasEnergy(p bgem.SyngasProperties) float64 {
	return p.LHV * p.DryVolume
}

// SyngasPower returns the chemical energy rate of the dry product gas
// as a dimensioned power.
func SyngasPower(p bgem.SyngasProperties) *unit.Unit {
	return unit.New(SyngasEnergy(p)*joulesPerMJ/secondsPerHour, unit.Watt)
}

// FeedstockEnergy returns the chemical energy rate of the biomass
// input [MJ/h]. The feed heating value is on the dry basis, so the
// moisture mass carries no energy.
func FeedstockEnergy(f bgem.BiomassFeed) float64 {
	return f.Flow * f.DryFraction() * f.LHV
}

// FeedstockPower returns the chemical energy rate of the biomass
// input as a dimensioned power.
func FeedstockPower(f bgem.BiomassFeed) *unit.Unit {
	return unit.New(FeedstockEnergy(f)*joulesPerMJ/secondsPerHour, unit.Watt)
}

// ColdGasEfficiency returns the fraction of the feed energy recovered
// as cold product gas. Values above one indicate the operating point
// predicts more gas energy than the dry feed carries, which happens
// when the heating value inputs are inconsistent.
func ColdGasEfficiency(r *bgem.Result) (float64, error) {
	fp := FeedstockPower(r.Feed)
	if fp.Value() <= 0 {
		return 0, fmt.Errorf("power: feedstock energy rate is zero for %g kg/h feed", r.Feed.Flow)
	}
	ratio := unit.Div(SyngasPower(r.Properties), fp)
	if err := ratio.Check(unit.Dimless); err != nil {
		return 0, err
	}
	return ratio.Value(), nil
}

// EngineGenerator describes the genset burning the product gas.
type EngineGenerator struct {
	// Efficiency is the gas-to-electricity conversion efficiency.
	Efficiency float64 `desc:"Electrical conversion efficiency" units:"fraction"`

	// Hours is the length of the reporting period.
	Hours float64 `desc:"Operating hours per reporting period" units:"h"`
}

// Validate returns an error if the generator parameters are outside
// their physical ranges.
func (e EngineGenerator) Validate() error {
	if e.Efficiency <= 0 || e.Efficiency > 1 {
		return fmt.Errorf("power: electrical efficiency %g outside (0, 1]", e.Efficiency)
	}
	if e.Hours <= 0 {
		return fmt.Errorf("power: operating hours %g must be positive", e.Hours)
	}
	return nil
}

// Energy returns the product gas energy delivered to the generator
// over the operating period [MJ].
func (e EngineGenerator) Energy(p bgem.SyngasProperties) float64 {
	return SyngasEnergy(p) * e.Hours
}

// Electricity returns the electrical energy generated over the
// operating period [kWh].
func (e EngineGenerator) Electricity(p bgem.SyngasProperties) float64 {
	return SyngasEnergy(p) * e.Hours * e.Efficiency * kWhPerMJ
}

// AveragePower returns the mean electrical output over the operating
// period [kW].
func (e EngineGenerator) AveragePower(p bgem.SyngasProperties) float64 {
	return e.Electricity(p) / e.Hours
}

// ElectricPower returns the instantaneous electrical output of the
// generator as a dimensioned power.
func (e EngineGenerator) ElectricPower(p bgem.SyngasProperties) *unit.Unit {
	return unit.Mul(SyngasPower(p), unit.New(e.Efficiency, unit.Dimless))
}

// CO2 returns the carbon dioxide mass emitted by complete combustion
// of the product gas over the operating period [kg]. CO2 already in
// the syngas passes through the engine unreacted and is not counted.
func (e EngineGenerator) CO2(c bgem.SyngasComposition) float64 {
	return (c.CO + c.CH4) * mwCO2 * e.Hours
}
