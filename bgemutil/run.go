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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thermomodel/bgem"
	"github.com/thermomodel/bgem/power"
)

// Run evaluates one gasification scenario and reports the results.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Its output stream receives the result table.
//
// OutputFile is the path for the result table file; the extension
// selects the format (.csv or .xlsx) and an empty path skips the file.
//
// OutputVariables specifies the output variables as expressions over
// the model results.
//
// Retries is the number of perturbed-seed retries when a solve does
// not converge.
func Run(CobraCommand *cobra.Command, OutputFile string, OutputVariables map[string]string, Retries int, s *Scenario) error {
	startTime := time.Now()
	for _, w := range InputRangeWarnings(s) {
		bgem.Log.Warn(w)
	}
	outputter, err := bgem.NewOutputter(OutputVariables, nil)
	if err != nil {
		return err
	}
	result, err := GasifyWithRetry(s, Retries)
	if err != nil {
		return err
	}
	values, err := outputter.Output(result)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	descs, units := outputMeta(OutputVariables)
	rows := make([]ReportRow, 0, len(names)+5)
	for _, name := range names {
		rows = append(rows, ReportRow{Name: name, Value: values[name], Units: units[name], Description: descs[name]})
	}
	rows = append(rows, powerRows(s.Engine, result)...)

	w := CobraCommand.OutOrStdout()
	fmt.Fprintf(w, "%-16s %16s  %s\n", "Variable", "Value", "Units")
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s %16.6g  %s\n", r.Name, r.Value, r.Units)
	}

	if OutputFile != "" {
		if err := writeRunFile(OutputFile, s, rows); err != nil {
			return err
		}
	}
	bgem.Log.WithFields(logrus.Fields{"elapsed": time.Since(startTime)}).Info("run finished")
	return nil
}

// powerRows derives the engine-generator quantities when an engine is
// configured.
func powerRows(e power.EngineGenerator, r *bgem.Result) []ReportRow {
	if e == (power.EngineGenerator{}) {
		return nil
	}
	rows := []ReportRow{
		{"SyngasEnergy", e.Energy(r.Properties), "MJ", "Syngas chemical energy over the reporting period"},
		{"Electricity", e.Electricity(r.Properties), "kWh", "Electrical output over the reporting period"},
		{"AveragePower", e.AveragePower(r.Properties), "kW", "Average electrical power"},
		{"CO2", e.CO2(r.Composition), "kg", "Carbon dioxide emitted over the reporting period"},
	}
	if cge, err := power.ColdGasEfficiency(r); err == nil {
		rows = append(rows, ReportRow{"CGE", cge, "-", "Cold-gas efficiency"})
	} else {
		bgem.Log.Warn(err)
	}
	return rows
}

// outputMeta maps output variable names to descriptions and units.
// Model variables passed through unchanged keep their built-in
// metadata; derived expressions are described by the expression
// itself.
func outputMeta(outputVariables map[string]string) (descs, units map[string]string) {
	modelNames, modelDescs, modelUnits := bgem.OutputOptions()
	descs = make(map[string]string, len(outputVariables))
	units = make(map[string]string, len(outputVariables))
	for name, expr := range outputVariables {
		descs[name] = expr
		for i, m := range modelNames {
			if name == m && expr == m {
				descs[name] = modelDescs[i]
				units[name] = modelUnits[i]
				break
			}
		}
	}
	return descs, units
}

func writeRunFile(path string, s *Scenario, rows []ReportRow) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return fmt.Errorf("bgemutil: unsupported output format %q (want .csv or .xlsx)", ext)
	}
	return writeFile(path, func(f *os.File) error {
		if ext == ".csv" {
			return writeRunCSV(f, rows)
		}
		return WriteRunReport(f, s, rows)
	})
}

func writeRunCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Variable", "Value", "Units", "Description"}); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write([]string{r.Name, strconv.FormatFloat(r.Value, 'g', -1, 64), r.Units, r.Description})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bgemutil: creating %s: %v", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RunSweep evaluates the model over a one- or two-dimensional
// parameter grid and reports the surfaces.
//
// CobraCommand is the cobra.Command instance where RunSweep is called
// from. Its output stream receives the summary table.
//
// OutputFile is the NetCDF path for the sweep surfaces; an empty path
// skips it.
//
// PlotFile is the PNG path for the sweep plots; an empty path skips
// it.
//
// ReportFile is the XLSX path for the sweep report workbook; an empty
// path skips it.
//
// OutputVariables specifies the output variables as expressions over
// the model results.
func RunSweep(CobraCommand *cobra.Command, OutputFile, PlotFile, ReportFile string, OutputVariables map[string]string, s *Scenario, config *SweepConfig) error {
	startTime := time.Now()
	for _, w := range InputRangeWarnings(s) {
		bgem.Log.Warn(w)
	}
	sweeper, err := NewSweeper(s, config, OutputVariables)
	if err != nil {
		return err
	}
	n := 1
	for _, a := range config.Axes {
		n *= a.Points
	}
	bgem.Log.WithFields(logrus.Fields{"points": n, "axes": len(config.Axes)}).Info("starting parameter sweep")
	res, err := sweeper.Run(context.Background())
	if err != nil {
		return err
	}
	if len(res.Failures) > 0 {
		bgem.Log.WithFields(logrus.Fields{
			"failed": len(res.Failures),
			"points": n,
		}).Warn("sweep points without a converged solution are reported as NaN")
	}

	w := CobraCommand.OutOrStdout()
	summary := res.Summary()
	fmt.Fprintf(w, "%-16s %12s %12s %12s %12s %6s\n", "Variable", "Mean", "StdDev", "Min", "Max", "N")
	for _, name := range res.Variables() {
		st := summary[name]
		fmt.Fprintf(w, "%-16s %12.5g %12.5g %12.5g %12.5g %6d\n", name, st.Mean, st.StdDev, st.Min, st.Max, st.N)
	}

	if OutputFile != "" {
		if err := writeFile(OutputFile, res.WriteNetCDF); err != nil {
			return err
		}
	}
	if PlotFile != "" {
		err := writeFile(PlotFile, func(f *os.File) error { return PlotSweep(res, f) })
		if err != nil {
			return err
		}
	}
	if ReportFile != "" {
		err := writeFile(ReportFile, func(f *os.File) error { return WriteSweepReport(f, s, res) })
		if err != nil {
			return err
		}
	}
	bgem.Log.WithFields(logrus.Fields{"elapsed": time.Since(startTime)}).Info("parameter sweep finished")
	return nil
}
