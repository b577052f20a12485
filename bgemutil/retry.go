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
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/thermomodel/bgem"
	"github.com/thermomodel/bgem/science/equilib"
)

// seedScales are applied to the default solver seeds on successive
// retries. Uniform scaling keeps the seed ratios while moving the
// starting point, which is usually enough to leave a bad basin, and
// keeps repeated runs deterministic.
var seedScales = []float64{5, 0.2, 25, 0.04, 100}

// GasifyWithRetry evaluates a scenario like bgem.Gasify, but re-runs
// a failed equilibrium solve up to retries more times, each time from
// deterministically perturbed seeds. Only convergence failures are
// retried; input errors return immediately.
func GasifyWithRetry(s *Scenario, retries int) (*bgem.Result, error) {
	if retries < 0 {
		retries = 0
	}
	tempK := s.Conditions.TempK()
	pressureAtm := s.Conditions.PressureAtm()
	if tempK <= 0 || pressureAtm <= 0 {
		return nil, fmt.Errorf("bgemutil: non-physical operating point: %g K, %g atm", tempK, pressureAtm)
	}
	balance, err := s.Feed.InputMoles(s.Agent)
	if err != nil {
		return nil, err
	}

	var comp bgem.SyngasComposition
	attempt := 0
	op := func() error {
		seeds := bgem.DefaultSeeds(balance)
		if attempt > 0 {
			scale := seedScales[(attempt-1)%len(seedScales)]
			for i := range seeds {
				seeds[i] *= scale
			}
		}
		attempt++
		var err error
		comp, err = bgem.SolveEquilibriumSeeded(balance, tempK, pressureAtm, seeds)
		if err == nil {
			return nil
		}
		if _, ok := err.(*bgem.ConvergenceError); ok {
			return err
		}
		return backoff.Permanent(err)
	}
	err = backoff.RetryNotify(op,
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(retries)),
		func(err error, _ time.Duration) {
			bgem.Log.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("equilibrium solve failed; retrying with perturbed seeds")
		})
	if err != nil {
		return nil, err
	}

	props := comp.Properties()
	bgem.Log.WithFields(logrus.Fields{
		"agent":    s.Agent.Kind.String(),
		"tempC":    s.Conditions.Temp,
		"bar":      s.Conditions.Pressure,
		"LHV":      props.LHV,
		"CCE":      comp.CarbonConversion,
		"attempts": attempt,
	}).Info("gasification equilibrium solved")
	return &bgem.Result{
		Feed:        s.Feed,
		Agent:       s.Agent,
		Conditions:  s.Conditions,
		Balance:     balance,
		Constants:   equilib.At(tempK, pressureAtm),
		Composition: comp,
		Properties:  props,
	}, nil
}
