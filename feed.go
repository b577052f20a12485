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
	"strings"

	"github.com/sirupsen/logrus"
)

// BiomassFeed describes the solid fuel entering the gasifier.
// Elemental fractions are on a dry, ash-free (DAF) mass basis;
// moisture and ash are on an as-received basis.
type BiomassFeed struct {
	Flow     float64 `desc:"Biomass mass flow rate" units:"kg/h"`
	C        float64 `desc:"Carbon mass fraction, DAF basis" units:"fraction"`
	H        float64 `desc:"Hydrogen mass fraction, DAF basis" units:"fraction"`
	O        float64 `desc:"Oxygen mass fraction, DAF basis" units:"fraction"`
	N        float64 `desc:"Nitrogen mass fraction, DAF basis" units:"fraction"`
	S        float64 `desc:"Sulfur mass fraction, DAF basis" units:"fraction"`
	Moisture float64 `desc:"Moisture mass fraction, as received" units:"fraction"`
	Ash      float64 `desc:"Ash mass fraction, dry basis" units:"fraction"`
	LHV      float64 `desc:"Lower heating value, dry basis" units:"MJ/kg"`
}

// DryFraction returns the dry mass fraction of the as-received feed.
func (f BiomassFeed) DryFraction() float64 { return 1 - f.Moisture }

// DAFFraction returns the dry, ash-free mass fraction of the
// as-received feed.
func (f BiomassFeed) DAFFraction() float64 { return f.DryFraction() * (1 - f.Ash) }

// FractionSum returns the sum of the elemental DAF mass fractions.
// It should be close to one for a consistent ultimate analysis.
func (f BiomassFeed) FractionSum() float64 { return f.C + f.H + f.O + f.N + f.S }

// fracSumTol is the allowed deviation of the elemental fraction sum
// from one before a warning is logged.
const fracSumTol = 0.01

// AgentKind selects the gasifying agent.
type AgentKind int

// The supported gasifying agents.
const (
	Air AgentKind = iota
	Steam
	Oxygen
	AirSteamMix
)

func (k AgentKind) String() string {
	switch k {
	case Air:
		return "air"
	case Steam:
		return "steam"
	case Oxygen:
		return "oxygen"
	case AirSteamMix:
		return "airsteam"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseAgentKind converts a configuration string to an AgentKind,
// ignoring case.
func ParseAgentKind(s string) (AgentKind, error) {
	switch strings.ToLower(s) {
	case "air":
		return Air, nil
	case "steam":
		return Steam, nil
	case "oxygen":
		return Oxygen, nil
	case "airsteam", "air-steam", "airsteammix":
		return AirSteamMix, nil
	}
	return -1, fmt.Errorf("bgem: invalid gasifying agent %q (want air, steam, oxygen, or airsteam)", s)
}

// GasifyingAgent is a tagged variant over the supported agents. Only
// the ratios relevant to Kind are read; the constructors below set
// exactly those.
type GasifyingAgent struct {
	Kind AgentKind

	// ER is the equivalence ratio: the fraction of the
	// stoichiometric oxygen demand supplied as air. Read for Air
	// and AirSteamMix.
	ER float64 `desc:"Equivalence ratio" units:"fraction of stoichiometric O2"`

	// SteamRatio is the steam to biomass mass ratio. Read for
	// Steam and AirSteamMix.
	SteamRatio float64 `desc:"Steam to biomass ratio" units:"kg/kg"`

	// OxygenRatio is the oxygen to biomass mass ratio. Read for
	// Oxygen.
	OxygenRatio float64 `desc:"Oxygen to biomass ratio" units:"kg/kg"`
}

// AirAgent returns an air gasification agent with equivalence ratio er.
func AirAgent(er float64) GasifyingAgent {
	return GasifyingAgent{Kind: Air, ER: er}
}

// SteamAgent returns a steam gasification agent with steam/biomass
// mass ratio sb.
func SteamAgent(sb float64) GasifyingAgent {
	return GasifyingAgent{Kind: Steam, SteamRatio: sb}
}

// OxygenAgent returns a pure-oxygen gasification agent with
// oxygen/biomass mass ratio ob.
func OxygenAgent(ob float64) GasifyingAgent {
	return GasifyingAgent{Kind: Oxygen, OxygenRatio: ob}
}

// AirSteamAgent returns a mixed air-steam agent with equivalence
// ratio er and steam/biomass mass ratio sb.
func AirSteamAgent(er, sb float64) GasifyingAgent {
	return GasifyingAgent{Kind: AirSteamMix, ER: er, SteamRatio: sb}
}

// Conditions holds the gasifier operating point.
type Conditions struct {
	Temp     float64 `desc:"Gasification temperature" units:"°C"`
	Pressure float64 `desc:"Reactor pressure" units:"bar"`
}

// TempK returns the gasification temperature in Kelvin.
func (c Conditions) TempK() float64 { return c.Temp + 273.15 }

// PressureAtm returns the reactor pressure in standard atmospheres,
// the basis of the equilibrium-constant pressure corrections.
func (c Conditions) PressureAtm() float64 { return c.Pressure / barPerAtm }

// MoleBalance holds the total moles of each element entering the
// reactor per hour, from the biomass, its moisture, and the gasifying
// agent, along with the individual agent and moisture contributions.
type MoleBalance struct {
	C float64 `desc:"Total carbon input" units:"kmol/h"`
	H float64 `desc:"Total atomic hydrogen input" units:"kmol/h"`
	O float64 `desc:"Total atomic oxygen input" units:"kmol/h"`
	N float64 `desc:"Total atomic nitrogen input" units:"kmol/h"`

	MoistureH2O float64 `desc:"Water entering as biomass moisture" units:"kmol/h"`
	AgentH2O    float64 `desc:"Water entering as gasification steam" units:"kmol/h"`
	AgentO2     float64 `desc:"Molecular oxygen from the agent" units:"kmol/h"`
	AgentN2     float64 `desc:"Molecular nitrogen from the agent" units:"kmol/h"`
}

// N2 returns the molecular nitrogen leaving the reactor, under the
// modeling assumption that all feed nitrogen exits as N2.
func (b MoleBalance) N2() float64 { return b.N / 2 }

// StoichiometricO2 returns the oxygen demand for complete combustion
// of one kg of DAF biomass [kmol/kg], from standard combustion
// stoichiometry for a CaHbOc fuel. Pathological compositions with
// anomalously high oxygen content are clamped at zero demand.
func (f BiomassFeed) StoichiometricO2() float64 {
	st := f.C/mwC + f.H/(4*mwH) - f.O/(2*mwO)
	if st < 0 {
		return 0
	}
	return st
}

// InputMoles converts the feed and gasifying agent into the total
// elemental mole balance entering the reactor. All outputs are
// finite and non-negative for valid inputs; an unrecognized agent
// kind is the only error condition.
func (f BiomassFeed) InputMoles(agent GasifyingAgent) (MoleBalance, error) {
	if s := f.FractionSum(); math.Abs(s-1) > fracSumTol {
		Log.WithFields(logrus.Fields{
			"sum": s,
		}).Warn("biomass elemental fractions do not sum to 1 on a DAF basis")
	}

	daf := f.Flow * f.DAFFraction()
	var b MoleBalance
	b.MoistureH2O = f.Flow * f.Moisture / mwH2O

	switch agent.Kind {
	case Air, AirSteamMix:
		st := f.C/mwC + f.H/(4*mwH) - f.O/(2*mwO)
		if st < 0 {
			Log.WithFields(logrus.Fields{
				"stoichO2": st,
			}).Warn("negative stoichiometric oxygen demand; clamping to zero")
			st = 0
		}
		b.AgentO2 = daf * st * agent.ER
		b.AgentN2 = b.AgentO2 / (o2FracAir / n2FracAir)
		if agent.Kind == AirSteamMix {
			b.AgentH2O = f.Flow * agent.SteamRatio / mwH2O
		}
	case Steam:
		b.AgentH2O = f.Flow * agent.SteamRatio / mwH2O
	case Oxygen:
		b.AgentO2 = f.Flow * agent.OxygenRatio / mwO2
	default:
		return MoleBalance{}, fmt.Errorf("bgem: invalid gasifying agent %v", agent.Kind)
	}

	b.C = daf * f.C / mwC
	b.H = daf*f.H/mwH + 2*b.MoistureH2O + 2*b.AgentH2O
	b.O = daf*f.O/mwO + b.MoistureH2O + b.AgentH2O + 2*b.AgentO2
	b.N = daf*f.N/mwN + 2*b.AgentN2
	return b, nil
}
