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
	"os"
	"sort"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thermomodel/bgem"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to BGEM.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Feed.Flow",
			usage: `
              Feed.Flow is the biomass mass flow into the gasifier, on an
              as-received basis [kg/h].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.C",
			usage: `
              Feed.C is the carbon mass fraction of the feed on a
              dry-ash-free basis.`,
			defaultVal: 0.50,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.H",
			usage: `
              Feed.H is the hydrogen mass fraction of the feed on a
              dry-ash-free basis.`,
			defaultVal: 0.06,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.O",
			usage: `
              Feed.O is the oxygen mass fraction of the feed on a
              dry-ash-free basis.`,
			defaultVal: 0.43,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.N",
			usage: `
              Feed.N is the nitrogen mass fraction of the feed on a
              dry-ash-free basis.`,
			defaultVal: 0.005,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.S",
			usage: `
              Feed.S is the sulfur mass fraction of the feed on a
              dry-ash-free basis.`,
			defaultVal: 0.005,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.Moisture",
			usage: `
              Feed.Moisture is the moisture mass fraction of the feed as
              received.`,
			defaultVal: 0.10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.Ash",
			usage: `
              Feed.Ash is the ash mass fraction of the feed on a dry
              basis.`,
			defaultVal: 0.010,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Feed.LHV",
			usage: `
              Feed.LHV is the lower heating value of the dry feed
              [MJ/kg]. It is only used for the cold-gas efficiency
              output.`,
			defaultVal: 18.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "feedstock",
			usage: `
              feedstock selects a named ultimate analysis from the built-in
              library (possibly extended by FeedstockFile) instead of the
              Feed.* elemental inputs. Run 'bgem feedstocks' for the
              available names. Feed.Flow applies either way.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "FeedstockFile",
			usage: `
              FeedstockFile is the path to a TOML file with additional
              feedstock analyses. Run 'bgem feedstocks init' to write an
              editable template.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags(), feedstocksCmd.Flags()},
		},
		{
			name: "Agent.Kind",
			usage: `
              Agent.Kind selects the gasifying agent. It should be one of
              air, steam, oxygen, or airsteam.`,
			defaultVal: "air",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Agent.ER",
			usage: `
              Agent.ER is the equivalence ratio: the oxygen supplied as a
              fraction of the stoichiometric requirement for complete
              combustion. It is used by the air and airsteam agents.`,
			defaultVal: 0.35,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Agent.SteamRatio",
			usage: `
              Agent.SteamRatio is the steam to dry biomass mass ratio
              [kg/kg]. It is used by the steam and airsteam agents.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Agent.OxygenRatio",
			usage: `
              Agent.OxygenRatio is the oxygen to dry biomass mass ratio
              [kg/kg]. It is used by the oxygen agent.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Conditions.Temp",
			usage: `
              Conditions.Temp is the gasification temperature [°C].`,
			defaultVal: 800.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Conditions.Pressure",
			usage: `
              Conditions.Pressure is the reactor pressure [bar].`,
			defaultVal: 1.01325,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Engine.Efficiency",
			usage: `
              Engine.Efficiency is the electrical conversion efficiency of
              the downstream engine-generator set. Zero disables the
              electricity and emission outputs.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Engine.Hours",
			usage: `
              Engine.Hours is the reporting period for the engine-generator
              energy and emission outputs [h].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "retries",
			usage: `
              retries is the number of times a non-converging equilibrium
              solve is retried from perturbed starting estimates before
              giving up.`,
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the file for the results. For run,
              the extension selects the format (.csv or .xlsx); for sweep
              it is a NetCDF file. An empty path skips the file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              output, and how they should be named. Each output can also
              be an expression combining model variables, for example
              "H2 / (H2 + CO)".`,
			defaultVal: map[string]string{
				"XH2Dry":  "XH2Dry",
				"XCODry":  "XCODry",
				"XCO2Dry": "XCO2Dry",
				"XCH4Dry": "XCH4Dry",
				"XN2Dry":  "XN2Dry",
				"LHV":     "LHV",
				"CCE":     "CCE",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Sweep.Variable",
			usage: `
              Sweep.Variable is the scenario input swept along the first
              axis. Run 'bgem sweep --help' output ends with the
              sweepable variable names.`,
			defaultVal: "Conditions.Temp",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Start",
			usage: `
              Sweep.Start is the first sample point of the first axis.`,
			defaultVal: 650.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.End",
			usage: `
              Sweep.End is the last sample point of the first axis.`,
			defaultVal: 950.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Points",
			usage: `
              Sweep.Points is the number of evenly spaced sample points on
              the first axis, endpoints included.`,
			defaultVal: 31,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Variable2",
			usage: `
              Sweep.Variable2 is the scenario input swept along the second
              axis. An empty name leaves the sweep one-dimensional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Start2",
			usage: `
              Sweep.Start2 is the first sample point of the second axis.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.End2",
			usage: `
              Sweep.End2 is the last sample point of the second axis.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Points2",
			usage: `
              Sweep.Points2 is the number of evenly spaced sample points on
              the second axis, endpoints included.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Cache",
			usage: `
              Sweep.Cache selects storage for evaluated sweep points so
              repeated sweeps skip finished work: empty for memory only, a
              directory path for a disk cache, or an http:// or gs:// URL
              for remote storage.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.Workers",
			usage: `
              Sweep.Workers is the number of operating points evaluated
              concurrently. Values below 1 mean one worker per CPU.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path of the PNG file for the sweep plots. An
              empty path skips the plots.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "ReportFile",
			usage: `
              ReportFile is the path of the XLSX file for the sweep report
              workbook. An empty path skips the report.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BGEM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(feedstocksCmd)
	feedstocksCmd.AddCommand(feedstocksInitCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("bgem: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "bgem",
	Short: "A biomass gasification equilibrium model.",
	Long: `BGEM predicts producer gas composition and heating value from biomass
gasification using thermochemical equilibrium.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BGEM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of BGEM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("BGEM v%s\n", bgem.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate one gasification scenario.",
	Long: `run solves the thermochemical equilibrium for the configured feed,
agent, and operating conditions, and prints the requested output
variables. If OutputFile is set, the result table is also written there
in CSV or XLSX format according to the file extension.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ScenarioConfig(Cfg)
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		return Run(
			cmd,
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			outputVars,
			Cfg.GetInt("retries"),
			s)
	},
	DisableAutoGenTag: true,
}

// sweepCmd evaluates the model over a grid of operating points.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the model over a parameter range.",
	Long: `sweep evaluates the configured scenario over a one- or two-dimensional
grid of operating points and reports the resulting output surfaces.
The surfaces can be written to a NetCDF file (OutputFile), plotted to a
PNG file (PlotFile), and tabulated in an XLSX workbook (ReportFile).

The sweepable variables are: ` + sweepableList() + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ScenarioConfig(Cfg)
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		config, err := SweepVars(Cfg)
		if err != nil {
			return err
		}
		return RunSweep(
			cmd,
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			os.ExpandEnv(Cfg.GetString("ReportFile")),
			outputVars,
			s,
			config)
	},
	DisableAutoGenTag: true,
}

// sweepableList formats the sweepable variable names for the sweep
// command help text.
func sweepableList() string {
	var b bytes.Buffer
	for i, name := range AxisVariables() {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
	}
	return b.String()
}

// feedstocksCmd lists the analyses available to the feedstock option.
var feedstocksCmd = &cobra.Command{
	Use:   "feedstocks",
	Short: "List the available feedstocks",
	Long: `feedstocks lists the built-in biomass ultimate analyses, extended by
FeedstockFile if one is configured. Any listed name can be given to the
feedstock option in place of the Feed.* elemental inputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := feedstockLibrary(os.ExpandEnv(Cfg.GetString("FeedstockFile")))
		if err != nil {
			return err
		}
		names := make([]string, 0, len(library))
		for name := range library {
			names = append(names, name)
		}
		sort.Strings(names)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-16s %6s %6s %6s %9s %6s %7s\n", "Name", "C", "H", "O", "Moisture", "Ash", "LHV")
		for _, name := range names {
			f := library[name]
			fmt.Fprintf(w, "%-16s %6.3f %6.3f %6.3f %9.3f %6.3f %7.2f\n",
				name, f.C, f.H, f.O, f.Moisture, f.Ash, f.LHV)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// feedstocksInitCmd writes an editable feedstock library template.
var feedstocksInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a feedstock library template",
	Long: `init writes the built-in feedstock library as a TOML template to the
named file, or to standard output when no file is given. The edited
result can be passed back through the FeedstockFile option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return fmt.Errorf("bgem: init takes at most one file argument")
		}
		if len(args) == 0 {
			return WriteFeedstockTemplate(cmd.OutOrStdout())
		}
		return writeFile(args[0], func(f *os.File) error { return WriteFeedstockTemplate(f) })
	},
	DisableAutoGenTag: true,
}
