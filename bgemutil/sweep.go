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
	"context"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"math"
	"net/url"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/davecgh/go-spew/spew"
	"github.com/lnashier/viper"

	"github.com/thermomodel/bgem"
)

func init() {
	// Sweep point results cross the gob boundary of the disk and
	// HTTP cache layers.
	gob.Register(map[string]float64{})
}

// sweepAxes lists the sweepable scenario inputs with their physical
// bounds. openMin marks bounds the axis may approach but not reach.
var sweepAxes = map[string]struct {
	set      func(*Scenario, float64)
	min, max float64
	openMin  bool
	units    string
}{
	"Conditions.Temp": {
		set:     func(s *Scenario, v float64) { s.Conditions.Temp = v },
		min:     -273.15, max: math.Inf(1), openMin: true,
		units: "°C",
	},
	"Conditions.Pressure": {
		set:     func(s *Scenario, v float64) { s.Conditions.Pressure = v },
		min:     0, max: math.Inf(1), openMin: true,
		units: "bar",
	},
	"Agent.ER": {
		set:   func(s *Scenario, v float64) { s.Agent.ER = v },
		min:   0, max: math.Inf(1),
		units: "fraction",
	},
	"Agent.SteamRatio": {
		set:   func(s *Scenario, v float64) { s.Agent.SteamRatio = v },
		min:   0, max: math.Inf(1),
		units: "kg/kg",
	},
	"Agent.OxygenRatio": {
		set:   func(s *Scenario, v float64) { s.Agent.OxygenRatio = v },
		min:   0, max: math.Inf(1),
		units: "kg/kg",
	},
	"Feed.Flow": {
		set:   func(s *Scenario, v float64) { s.Feed.Flow = v },
		min:   0, max: math.Inf(1),
		units: "kg/h",
	},
	"Feed.Moisture": {
		set:   func(s *Scenario, v float64) { s.Feed.Moisture = v },
		min:   0, max: 1,
		units: "fraction",
	},
}

// AxisVariables returns the names of the sweepable scenario inputs
// in alphabetical order.
func AxisVariables() []string {
	names := make([]string, 0, len(sweepAxes))
	for name := range sweepAxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AxisUnits returns the units of a sweepable variable.
func AxisUnits(variable string) string {
	return sweepAxes[variable].units
}

// SweepAxis is one swept input variable sampled on a linear range.
type SweepAxis struct {
	Variable   string
	Start, End float64
	Points     int
}

func (a SweepAxis) check() error {
	bounds, ok := sweepAxes[a.Variable]
	if !ok {
		return fmt.Errorf("bgemutil: Sweep.Variable=%q but should be one of: %s",
			a.Variable, strings.Join(AxisVariables(), ", "))
	}
	if a.Points < 2 {
		return fmt.Errorf("bgemutil: Sweep.Points=%d but should be >=2", a.Points)
	}
	if !(a.End > a.Start) {
		return fmt.Errorf("bgemutil: sweep range for %s is [%g, %g] but End should be > Start", a.Variable, a.Start, a.End)
	}
	low, high := a.Start, a.End
	if low < bounds.min || (bounds.openMin && low == bounds.min) || high > bounds.max {
		return fmt.Errorf("bgemutil: sweep range for %s is [%g, %g] but should stay within (%g, %g]",
			a.Variable, low, high, bounds.min, bounds.max)
	}
	return nil
}

// Values returns the axis sample points, evenly spaced from Start to
// End inclusive.
func (a SweepAxis) Values() []float64 {
	vals := make([]float64, a.Points)
	step := (a.End - a.Start) / float64(a.Points-1)
	for i := range vals {
		vals[i] = a.Start + float64(i)*step
	}
	return vals
}

// SweepConfig describes a one- or two-dimensional parameter sweep.
type SweepConfig struct {
	Axes []SweepAxis

	// Cache selects the storage under the in-memory evaluation
	// cache: empty for memory only, a directory path for a disk
	// cache, or an http:// or gs:// URL for remote storage.
	Cache string

	// Workers is the number of operating points evaluated
	// concurrently; values below 1 mean GOMAXPROCS.
	Workers int

	// Retries is the number of perturbed-seed retries per
	// non-converging point.
	Retries int
}

// SweepVars unmarshals the sweep section of a viper configuration.
func SweepVars(cfg *viper.Viper) (*SweepConfig, error) {
	sc := &SweepConfig{
		Axes: []SweepAxis{{
			Variable: cfg.GetString("Sweep.Variable"),
			Start:    cfg.GetFloat64("Sweep.Start"),
			End:      cfg.GetFloat64("Sweep.End"),
			Points:   cfg.GetInt("Sweep.Points"),
		}},
		Cache:   os.ExpandEnv(cfg.GetString("Sweep.Cache")),
		Workers: cfg.GetInt("Sweep.Workers"),
		Retries: cfg.GetInt("retries"),
	}
	if v2 := cfg.GetString("Sweep.Variable2"); v2 != "" {
		sc.Axes = append(sc.Axes, SweepAxis{
			Variable: v2,
			Start:    cfg.GetFloat64("Sweep.Start2"),
			End:      cfg.GetFloat64("Sweep.End2"),
			Points:   cfg.GetInt("Sweep.Points2"),
		})
	}
	for _, a := range sc.Axes {
		if err := a.check(); err != nil {
			return nil, err
		}
	}
	if len(sc.Axes) == 2 && sc.Axes[0].Variable == sc.Axes[1].Variable {
		return nil, fmt.Errorf("bgemutil: both sweep axes set %s", sc.Axes[0].Variable)
	}
	return sc, nil
}

// SweepFailure records one grid point whose solve did not converge.
type SweepFailure struct {
	Index []int
	Value []float64
	Err   string
}

// SweepResult holds evaluated sweep surfaces.
type SweepResult struct {
	Axes []SweepAxis

	// AxisValues[i] are the sample points along Axes[i].
	AxisValues [][]float64

	// Surfaces maps each output variable to an array with one
	// dimension per axis. Entries for failed points are NaN.
	Surfaces map[string]*sparse.DenseArray

	// Descriptions and Units annotate the output variables.
	Descriptions map[string]string
	Units        map[string]string

	// Failures lists the skipped grid points.
	Failures []SweepFailure
}

// Variables returns the output variable names in alphabetical order.
func (r *SweepResult) Variables() []string {
	names := make([]string, 0, len(r.Surfaces))
	for v := range r.Surfaces {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// SummaryStats describe one output surface over its converged
// points.
type SummaryStats struct {
	N                      int
	Mean, StdDev, Min, Max float64

	// Slope, Intercept and RSquared give the linear trend along
	// the axis of a one-dimensional sweep; they are zero
	// otherwise.
	Slope, Intercept, RSquared float64
}

// Summary computes per-variable statistics over the converged grid
// points.
func (r *SweepResult) Summary() map[string]SummaryStats {
	out := make(map[string]SummaryStats, len(r.Surfaces))
	for v, surf := range r.Surfaces {
		var s stats.Stats
		var n int
		var xs, ys []float64
		for i, val := range surf.Elements {
			if math.IsNaN(val) {
				continue
			}
			s.Update(val)
			n++
			if len(r.Axes) == 1 {
				xs = append(xs, r.AxisValues[0][i])
				ys = append(ys, val)
			}
		}
		if n == 0 {
			out[v] = SummaryStats{}
			continue
		}
		ss := SummaryStats{
			N:    n,
			Mean: s.Mean(),
			Min:  s.Min(),
			Max:  s.Max(),
		}
		if n > 1 {
			ss.StdDev = s.SampleStandardDeviation()
		}
		if len(xs) > 1 {
			ss.Slope, ss.Intercept, ss.RSquared, _, _, _ = stats.LinearRegression(xs, ys)
		}
		out[v] = ss
	}
	return out
}

// Sweeper evaluates scenario variations over a parameter grid
// through a deduplicating request cache.
type Sweeper struct {
	base      Scenario
	config    *SweepConfig
	varNames  []string
	descs     map[string]string
	units     map[string]string
	outputter *bgem.Outputter
	cache     *requestcache.Cache
}

// NewSweeper prepares a cached evaluator for a parameter sweep
// around the base scenario. The in-memory cache is sized to hold the
// whole grid.
func NewSweeper(base *Scenario, config *SweepConfig, outputVariables map[string]string) (*Sweeper, error) {
	if len(config.Axes) == 0 || len(config.Axes) > 2 {
		return nil, fmt.Errorf("bgemutil: a sweep needs one or two axes but has %d", len(config.Axes))
	}
	for _, a := range config.Axes {
		if err := a.check(); err != nil {
			return nil, err
		}
	}
	if len(config.Axes) == 2 && config.Axes[0].Variable == config.Axes[1].Variable {
		return nil, fmt.Errorf("bgemutil: both sweep axes set %s", config.Axes[0].Variable)
	}
	outputVariables, err := checkOutputVars(outputVariables)
	if err != nil {
		return nil, err
	}
	outputter, err := bgem.NewOutputter(outputVariables, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(outputVariables))
	for v := range outputVariables {
		names = append(names, v)
	}
	sort.Strings(names)

	descs, units := outputMeta(outputVariables)

	workers := config.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := 1
	for _, a := range config.Axes {
		n *= a.Points
	}

	sw := &Sweeper{
		base:      *base,
		config:    config,
		varNames:  names,
		descs:     descs,
		units:     units,
		outputter: outputter,
	}
	sw.cache, err = newSweepCache(sw.evaluate, workers, n, config.Cache)
	if err != nil {
		return nil, err
	}
	return sw, nil
}

// evaluate runs the model for one grid point and returns the output
// variable values.
func (sw *Sweeper) evaluate(ctx context.Context, request interface{}) (interface{}, error) {
	s := request.(Scenario)
	r, err := GasifyWithRetry(&s, sw.config.Retries)
	if err != nil {
		return nil, err
	}
	return sw.outputter.Output(r)
}

// newSweepCache composes the evaluation cache: deduplication and an
// in-memory layer always, plus an HTTP, Google Cloud Storage, or
// disk layer depending on the cache location.
func newSweepCache(f requestcache.ProcessFunc, workers, memEntries int, cacheLoc string) (*requestcache.Cache, error) {
	if cacheLoc == "" {
		return requestcache.NewCache(f, workers, requestcache.Deduplicate(),
			requestcache.Memory(memEntries)), nil
	} else if strings.HasPrefix(cacheLoc, "http") {
		return requestcache.NewCache(f, workers, requestcache.Deduplicate(),
			requestcache.Memory(memEntries), requestcache.HTTP(cacheLoc, requestcache.UnmarshalGob)), nil
	} else if strings.HasPrefix(cacheLoc, "gs://") {
		loc, err := url.Parse(cacheLoc)
		if err != nil {
			return nil, fmt.Errorf("bgemutil: parsing sweep cache location: %v", err)
		}
		cf, err := requestcache.GoogleCloudStorage(context.TODO(), loc.Host,
			strings.TrimLeft(loc.Path, "/"), requestcache.MarshalGob, requestcache.UnmarshalGob)
		if err != nil {
			return nil, err
		}
		return requestcache.NewCache(f, workers, requestcache.Deduplicate(),
			requestcache.Memory(memEntries), cf), nil
	}
	if err := os.MkdirAll(cacheLoc, os.ModePerm); err != nil {
		return nil, err
	}
	return requestcache.NewCache(f, workers, requestcache.Deduplicate(),
		requestcache.Memory(memEntries),
		requestcache.Disk(cacheLoc, requestcache.MarshalGob, requestcache.UnmarshalGob)), nil
}

// requestKey returns the cache key for a sweep point: an FNV hash of
// the gob encoding, with a spew dump as the fallback for anything
// gob cannot encode.
func requestKey(object interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		printer := spew.ConfigState{
			Indent:                  " ",
			SortKeys:                true,
			DisableMethods:          true,
			SpewKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// gridIndex converts a flat grid index to per-axis indices in row
// major order.
func gridIndex(i int, shape []int) []int {
	index := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		index[d] = i % shape[d]
		i /= shape[d]
	}
	return index
}

// Run evaluates the whole grid. Convergence failures are recorded in
// the result and leave NaN surface entries; other errors abort the
// sweep.
func (sw *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	axes := sw.config.Axes
	res := &SweepResult{
		Axes:         axes,
		AxisValues:   make([][]float64, len(axes)),
		Surfaces:     make(map[string]*sparse.DenseArray, len(sw.varNames)),
		Descriptions: sw.descs,
		Units:        sw.units,
	}
	shape := make([]int, len(axes))
	n := 1
	for i, a := range axes {
		res.AxisValues[i] = a.Values()
		shape[i] = a.Points
		n *= a.Points
	}
	for _, v := range sw.varNames {
		res.Surfaces[v] = sparse.ZerosDense(shape...)
	}

	numGetters := sw.config.Workers
	if numGetters < 1 {
		numGetters = runtime.GOMAXPROCS(0)
	}
	if numGetters > n {
		numGetters = n
	}
	jobChan := make(chan int)
	errChan := make(chan error)
	var mx sync.Mutex
	for g := 0; g < numGetters; g++ {
		go func() {
			var failed error
			for i := range jobChan {
				if failed != nil {
					continue
				}
				index := gridIndex(i, shape)
				point := sw.base
				for d, a := range axes {
					sweepAxes[a.Variable].set(&point, res.AxisValues[d][index[d]])
				}
				req := sw.cache.NewRequest(ctx, point, "sweep_"+bgem.Version+"_"+requestKey(point))
				result, err := req.Result()
				if err != nil {
					if _, ok := err.(*bgem.ConvergenceError); ok {
						vals := make([]float64, len(axes))
						for d := range axes {
							vals[d] = res.AxisValues[d][index[d]]
						}
						mx.Lock()
						res.Failures = append(res.Failures, SweepFailure{Index: index, Value: vals, Err: err.Error()})
						mx.Unlock()
						for _, v := range sw.varNames {
							res.Surfaces[v].Set(math.NaN(), index...)
						}
						continue
					}
					failed = err
					continue
				}
				row, ok := result.(map[string]float64)
				if !ok {
					failed = fmt.Errorf("bgemutil: sweep result has invalid type: %#v", result)
					continue
				}
				for v, val := range row {
					if _, ok := res.Surfaces[v]; ok {
						res.Surfaces[v].Set(val, index...)
					}
				}
			}
			errChan <- failed
		}()
	}
	for i := 0; i < n; i++ {
		jobChan <- i
	}
	close(jobChan)
	var firstErr error
	for g := 0; g < numGetters; g++ {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		a, b := res.Failures[i].Index, res.Failures[j].Index
		for d := range a {
			if a[d] != b[d] {
				return a[d] < b[d]
			}
		}
		return false
	})
	return res, nil
}
