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

package bgemutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"

	"github.com/thermomodel/bgem"
	"github.com/thermomodel/bgem/power"
)

// Scenario collects everything needed to evaluate one operating point.
type Scenario struct {
	Feed       bgem.BiomassFeed
	Agent      bgem.GasifyingAgent
	Conditions bgem.Conditions

	// Engine describes the downstream engine-generator. A zero
	// value disables the electricity and emission outputs.
	Engine power.EngineGenerator
}

// Gasify evaluates the scenario.
func (s *Scenario) Gasify() (*bgem.Result, error) {
	return bgem.Gasify(s.Feed, s.Agent, s.Conditions)
}

// ScenarioConfig unmarshals a viper configuration into a validated
// scenario. If the feedstock option is set, the named analysis from
// the built-in library (possibly extended by FeedstockFile) replaces
// the Feed.* elemental inputs; Feed.Flow sets the mass flow either
// way.
func ScenarioConfig(cfg *viper.Viper) (*Scenario, error) {
	feed := bgem.BiomassFeed{
		Flow:     cfg.GetFloat64("Feed.Flow"),
		C:        cfg.GetFloat64("Feed.C"),
		H:        cfg.GetFloat64("Feed.H"),
		O:        cfg.GetFloat64("Feed.O"),
		N:        cfg.GetFloat64("Feed.N"),
		S:        cfg.GetFloat64("Feed.S"),
		Moisture: cfg.GetFloat64("Feed.Moisture"),
		Ash:      cfg.GetFloat64("Feed.Ash"),
		LHV:      cfg.GetFloat64("Feed.LHV"),
	}

	if name := cfg.GetString("feedstock"); name != "" {
		library, err := feedstockLibrary(os.ExpandEnv(cfg.GetString("FeedstockFile")))
		if err != nil {
			return nil, err
		}
		analysis, ok := library[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("bgemutil: unknown feedstock %q; run `bgem feedstocks` for the available names", name)
		}
		flow := feed.Flow
		feed = analysis
		feed.Flow = flow
	}
	if err := checkFeed(feed); err != nil {
		return nil, err
	}

	agent, err := agentConfig(cfg)
	if err != nil {
		return nil, err
	}

	cond := bgem.Conditions{
		Temp:     cfg.GetFloat64("Conditions.Temp"),
		Pressure: cfg.GetFloat64("Conditions.Pressure"),
	}
	if err := checkConditions(cond); err != nil {
		return nil, err
	}

	engine := power.EngineGenerator{
		Efficiency: cfg.GetFloat64("Engine.Efficiency"),
		Hours:      cfg.GetFloat64("Engine.Hours"),
	}
	if err := checkEngine(engine); err != nil {
		return nil, err
	}

	return &Scenario{Feed: feed, Agent: agent, Conditions: cond, Engine: engine}, nil
}

// agentConfig unmarshals the gasifying agent configuration.
func agentConfig(cfg *viper.Viper) (bgem.GasifyingAgent, error) {
	kind, err := bgem.ParseAgentKind(cfg.GetString("Agent.Kind"))
	if err != nil {
		return bgem.GasifyingAgent{}, err
	}
	a := bgem.GasifyingAgent{
		Kind:        kind,
		ER:          cfg.GetFloat64("Agent.ER"),
		SteamRatio:  cfg.GetFloat64("Agent.SteamRatio"),
		OxygenRatio: cfg.GetFloat64("Agent.OxygenRatio"),
	}
	return a, checkAgent(a)
}

// checkFeed returns an error if any feed quantity is outside its
// physical range.
func checkFeed(f bgem.BiomassFeed) error {
	if !(f.Flow >= 0) {
		return fmt.Errorf("bgemutil: Feed.Flow=%g but should be >=0", f.Flow)
	}
	fracs := []float64{f.C, f.H, f.O, f.N, f.S, f.Moisture, f.Ash}
	names := []string{"Feed.C", "Feed.H", "Feed.O", "Feed.N", "Feed.S", "Feed.Moisture", "Feed.Ash"}
	for i, v := range fracs {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("bgemutil: %s=%g but should be in [0, 1]", names[i], v)
		}
	}
	if !(f.LHV >= 0) {
		return fmt.Errorf("bgemutil: Feed.LHV=%g but should be >=0", f.LHV)
	}
	return nil
}

// checkAgent returns an error if the ratios the selected agent kind
// reads are not positive.
func checkAgent(a bgem.GasifyingAgent) error {
	switch a.Kind {
	case bgem.Air:
		if !(a.ER > 0) {
			return fmt.Errorf("bgemutil: Agent.ER=%g but should be >0 for air gasification", a.ER)
		}
	case bgem.Steam:
		if !(a.SteamRatio > 0) {
			return fmt.Errorf("bgemutil: Agent.SteamRatio=%g but should be >0 for steam gasification", a.SteamRatio)
		}
	case bgem.Oxygen:
		if !(a.OxygenRatio > 0) {
			return fmt.Errorf("bgemutil: Agent.OxygenRatio=%g but should be >0 for oxygen gasification", a.OxygenRatio)
		}
	case bgem.AirSteamMix:
		if !(a.ER > 0) {
			return fmt.Errorf("bgemutil: Agent.ER=%g but should be >0 for air-steam gasification", a.ER)
		}
		if !(a.SteamRatio > 0) {
			return fmt.Errorf("bgemutil: Agent.SteamRatio=%g but should be >0 for air-steam gasification", a.SteamRatio)
		}
	}
	return nil
}

// checkConditions returns an error if the operating point is not
// physically meaningful.
func checkConditions(c bgem.Conditions) error {
	if !(c.TempK() > 0) {
		return fmt.Errorf("bgemutil: Conditions.Temp=%g °C but should be above absolute zero", c.Temp)
	}
	if !(c.Pressure > 0) {
		return fmt.Errorf("bgemutil: Conditions.Pressure=%g but should be >0", c.Pressure)
	}
	return nil
}

// checkEngine validates the engine-generator inputs. A fully zero
// engine disables the power outputs and is allowed.
func checkEngine(e power.EngineGenerator) error {
	if e.Efficiency == 0 && e.Hours == 0 {
		return nil
	}
	return e.Validate()
}

// checkOutputVars removes end lines and expands environment variables
// in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		vars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return vars, nil
}

// InputRangeWarnings reports scenario inputs that are valid but
// outside the envelope the underlying correlations were fitted over.
// The simulation still runs; the results just deserve suspicion.
func InputRangeWarnings(s *Scenario) []string {
	var w []string
	if sum := s.Feed.FractionSum(); math.Abs(sum-1) > 0.01 {
		w = append(w, fmt.Sprintf("elemental fractions sum to %.3f; expected ≈1 on a dry-ash-free basis", sum))
	}
	if s.Feed.Moisture > 0.4 {
		w = append(w, fmt.Sprintf("Feed.Moisture=%g is above 0.4; equilibrium predictions for very wet feeds are unreliable", s.Feed.Moisture))
	}
	switch s.Agent.Kind {
	case bgem.Air, bgem.AirSteamMix:
		if s.Agent.ER < 0.15 || s.Agent.ER > 0.5 {
			w = append(w, fmt.Sprintf("Agent.ER=%g is outside the usual gasification range [0.15, 0.5]", s.Agent.ER))
		}
	}
	if s.Agent.SteamRatio > 2.5 {
		w = append(w, fmt.Sprintf("Agent.SteamRatio=%g is above 2.5", s.Agent.SteamRatio))
	}
	if s.Conditions.Temp < 600 || s.Conditions.Temp > 1100 {
		w = append(w, fmt.Sprintf("Conditions.Temp=%g °C is outside the usual gasification range [600, 1100]", s.Conditions.Temp))
	}
	if s.Conditions.Pressure < 0.5 || s.Conditions.Pressure > 10 {
		w = append(w, fmt.Sprintf("Conditions.Pressure=%g bar is outside the usual range [0.5, 10]", s.Conditions.Pressure))
	}
	return w
}

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json
// object if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}
