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

package bgem

import (
	"fmt"
	"math"
	"regexp"

	"github.com/Knetic/govaluate"
)

// outputDef describes one built-in model variable available to
// output expressions.
type outputDef struct {
	name  string
	desc  string
	units string
	value func(*Result) float64
}

var outputDefs = []outputDef{
	{"Flow", "Biomass feed rate", "kg/h", func(r *Result) float64 { return r.Feed.Flow }},
	{"Temp", "Gasification temperature", "°C", func(r *Result) float64 { return r.Conditions.Temp }},
	{"Pressure", "Reactor pressure", "bar", func(r *Result) float64 { return r.Conditions.Pressure }},
	{"ER", "Equivalence ratio", "-", func(r *Result) float64 { return r.Agent.ER }},
	{"SteamRatio", "Steam to biomass mass ratio", "-", func(r *Result) float64 { return r.Agent.SteamRatio }},
	{"OxygenRatio", "Oxygen to biomass mass ratio", "-", func(r *Result) float64 { return r.Agent.OxygenRatio }},

	{"CIn", "Carbon input", "kmol/h", func(r *Result) float64 { return r.Balance.C }},
	{"HIn", "Atomic hydrogen input", "kmol/h", func(r *Result) float64 { return r.Balance.H }},
	{"OIn", "Atomic oxygen input", "kmol/h", func(r *Result) float64 { return r.Balance.O }},
	{"NIn", "Atomic nitrogen input", "kmol/h", func(r *Result) float64 { return r.Balance.N }},
	{"SteamIn", "Agent steam input", "kmol/h", func(r *Result) float64 { return r.Balance.AgentH2O }},
	{"O2In", "Agent molecular oxygen input", "kmol/h", func(r *Result) float64 { return r.Balance.AgentO2 }},

	{"Kwgsr", "Water-gas shift equilibrium constant", "-", func(r *Result) float64 { return r.Constants.WGSR }},
	{"Kboudouard", "Boudouard equilibrium constant", "-", func(r *Result) float64 { return r.Constants.Boudouard }},
	{"Kmethanation", "Methanation equilibrium constant", "-", func(r *Result) float64 { return r.Constants.Methanation }},

	{"H2", "Hydrogen production", "kmol/h", func(r *Result) float64 { return r.Composition.H2 }},
	{"CO", "Carbon monoxide production", "kmol/h", func(r *Result) float64 { return r.Composition.CO }},
	{"CO2", "Carbon dioxide production", "kmol/h", func(r *Result) float64 { return r.Composition.CO2 }},
	{"CH4", "Methane production", "kmol/h", func(r *Result) float64 { return r.Composition.CH4 }},
	{"H2O", "Water vapor production", "kmol/h", func(r *Result) float64 { return r.Composition.H2O }},
	{"N2", "Nitrogen production", "kmol/h", func(r *Result) float64 { return r.Composition.N2 }},
	{"Char", "Unconverted carbon", "kmol/h", func(r *Result) float64 { return r.Composition.Char }},
	{"CCE", "Carbon conversion efficiency", "-", func(r *Result) float64 { return r.Composition.CarbonConversion }},
	{"Iterations", "Newton steps to convergence", "-", func(r *Result) float64 { return float64(r.Composition.Iterations) }},

	{"XH2Dry", "Dry-basis hydrogen fraction", "-", func(r *Result) float64 { return r.Properties.Dry.H2 }},
	{"XCODry", "Dry-basis carbon monoxide fraction", "-", func(r *Result) float64 { return r.Properties.Dry.CO }},
	{"XCO2Dry", "Dry-basis carbon dioxide fraction", "-", func(r *Result) float64 { return r.Properties.Dry.CO2 }},
	{"XCH4Dry", "Dry-basis methane fraction", "-", func(r *Result) float64 { return r.Properties.Dry.CH4 }},
	{"XN2Dry", "Dry-basis nitrogen fraction", "-", func(r *Result) float64 { return r.Properties.Dry.N2 }},
	{"XH2Wet", "Wet-basis hydrogen fraction", "-", func(r *Result) float64 { return r.Properties.Wet.H2 }},
	{"XCOWet", "Wet-basis carbon monoxide fraction", "-", func(r *Result) float64 { return r.Properties.Wet.CO }},
	{"XCO2Wet", "Wet-basis carbon dioxide fraction", "-", func(r *Result) float64 { return r.Properties.Wet.CO2 }},
	{"XCH4Wet", "Wet-basis methane fraction", "-", func(r *Result) float64 { return r.Properties.Wet.CH4 }},
	{"XH2OWet", "Wet-basis water vapor fraction", "-", func(r *Result) float64 { return r.Properties.Wet.H2O }},
	{"XN2Wet", "Wet-basis nitrogen fraction", "-", func(r *Result) float64 { return r.Properties.Wet.N2 }},

	{"LHV", "Dry gas lower heating value", "MJ/Nm³", func(r *Result) float64 { return r.Properties.LHV }},
	{"DryMoles", "Dry gas production", "kmol/h", func(r *Result) float64 { return r.Properties.DryMoles }},
	{"WetMoles", "Wet gas production", "kmol/h", func(r *Result) float64 { return r.Properties.WetMoles }},
	{"DryGas", "Dry gas production at normal conditions", "Nm³/h", func(r *Result) float64 { return r.Properties.DryVolume }},
	{"WetGas", "Wet gas production at normal conditions", "Nm³/h", func(r *Result) float64 { return r.Properties.WetVolume }},
}

// OutputOptions returns the names of the built-in model variables
// along with their descriptions and units, in matching order.
func OutputOptions() (names, descriptions, units []string) {
	for _, d := range outputDefs {
		names = append(names, d.name)
		descriptions = append(descriptions, d.desc)
		units = append(units, d.units)
	}
	return
}

// Outputter is a holder for output parameters.
//
// outputVariables maps the names of the variables for which data
// should be reported to expressions that define how the requested
// data should be calculated. These expressions can utilize variables
// built into the model, other user-defined variables, and functions.
//
// modelVariables is automatically generated based on the model
// variables that are required to calculate the requested output
// variables.
//
// Functions are defined in the outputFunctions variable.
type Outputter struct {
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("bgem: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		return f(arg[0].(float64)), nil
	}
}

func twoArg(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 2 {
			return nil, fmt.Errorf("bgem: got %d arguments for function '%s', but needs 2", len(arg), name)
		}
		return f(arg[0].(float64), arg[1].(float64)), nil
	}
}

// NewOutputter initializes a new Outputter holder and adds a set of
// default output functions: 'exp(x)', 'log(x)' (natural logarithm),
// 'sqrt(x)', 'abs(x)', 'min(x, y)' and 'max(x, y)'. Additional
// functions passed in outputFunctions override the defaults on name
// collision.
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp":  oneArg("exp", math.Exp),
		"log":  oneArg("log", math.Log),
		"sqrt": oneArg("sqrt", math.Sqrt),
		"abs":  oneArg("abs", math.Abs),
		"min":  twoArg("min", math.Min),
		"max":  twoArg("max", math.Max),
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	vars := make(map[string]string, len(outputVariables))
	for key, val := range outputVariables {
		vars[key] = val
	}
	o := &Outputter{
		outputVariables: vars,
		outputFunctions: defaultOutputFuncs,
	}
	if err := o.checkOutputNames(); err != nil {
		return nil, err
	}
	if err := o.resolveDerived(); err != nil {
		return nil, err
	}
	if err := o.compile(); err != nil {
		return nil, err
	}
	return o, nil
}

// ModelVariables returns the unique built-in variables required to
// calculate the requested output variables.
func (o *Outputter) ModelVariables() []string { return o.modelVariables }

func isModelVariable(name string) bool {
	for _, d := range outputDefs {
		if d.name == name {
			return true
		}
	}
	return false
}

var outputNameRE = regexp.MustCompile(`^[A-Za-z]\w*$`)

// checkOutputNames checks that output variable names are well-formed
// identifiers and that none of them redefines a built-in model
// variable. Mapping a model variable to itself is allowed, so
// built-ins can be requested directly by name.
func (o *Outputter) checkOutputNames() error {
	for key, val := range o.outputVariables {
		if !outputNameRE.MatchString(key) {
			return fmt.Errorf("bgem: output variable name '%s' includes unsupported characters", key)
		}
		if isModelVariable(key) && val != key {
			return fmt.Errorf("bgem: output variable name '%s' redefines a model variable", key)
		}
	}
	return nil
}

// resolveDerived rewrites expressions that reference other
// user-defined output variables, substituting the defining expression
// in parentheses, until every expression depends only on built-in
// model variables. Substitution respects identifier boundaries, so a
// variable named 'CO' is not rewritten inside 'XCODry'.
func (o *Outputter) resolveDerived() error {
	for round := 0; ; round++ {
		if round > len(o.outputVariables) {
			return fmt.Errorf("bgem: circular reference in output variable expressions")
		}
		changed := false
		for key, val := range o.outputVariables {
			expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
			if err != nil {
				return fmt.Errorf("bgem: output variable '%s': %v", key, err)
			}
			for _, v := range removeDuplicates(expression.Vars()) {
				def, ok := o.outputVariables[v]
				if !ok || v == key || def == v || isModelVariable(v) {
					continue
				}
				re := regexp.MustCompile(`\b` + v + `\b`)
				o.outputVariables[key] = re.ReplaceAllLiteralString(o.outputVariables[key], "("+def+")")
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
}

// compile builds the evaluable expressions and records the unique
// model variables they depend on, erroring on any undefined name.
func (o *Outputter) compile() error {
	o.expressions = make(map[string]*govaluate.EvaluableExpression, len(o.outputVariables))
	o.modelVariables = o.modelVariables[:0]
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("bgem: output variable '%s': %v", key, err)
		}
		for _, v := range removeDuplicates(expression.Vars()) {
			if !isModelVariable(v) {
				return fmt.Errorf("bgem: undefined variable name '%s'", v)
			}
			o.modelVariables = append(o.modelVariables, v)
		}
		o.expressions[key] = expression
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	return nil
}

// removeDuplicates removes all duplicated strings from a slice,
// returning a slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]string)
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = val
		}
	}
	return result
}

// Output evaluates the requested output variables for one model
// result.
func (o *Outputter) Output(r *Result) (map[string]float64, error) {
	params := make(map[string]interface{}, len(outputDefs))
	for _, d := range outputDefs {
		params[d.name] = d.value(r)
	}
	out := make(map[string]float64, len(o.expressions))
	for name, expression := range o.expressions {
		v, err := expression.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("bgem: evaluating output variable '%s': %v", name, err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("bgem: output variable '%s' does not evaluate to a number", name)
		}
		out[name] = f
	}
	return out, nil
}
