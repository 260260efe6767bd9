/*
Copyright © 2018 the ResOM authors.
This file is part of ResOM.

ResOM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ResOM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ResOM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package resomutil provides configuration and command-line wiring for
// running the resom surface residue model.
package resomutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/soilmodel/resom"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds the configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
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
			name: "RegistryFile",
			usage: `
              RegistryFile is the path to the residue type registry, a TOML file
              with one [types.<name>] table per organic matter type. It can
              include environment variables.`,
			defaultVal: "residuetypes.toml",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialConditionsFile",
			usage: `
              InitialConditionsFile is the path to the initial residue pools, a
              TOML file with one [[residue]] table per pool. If empty, the
              simulation starts with a bare surface. It can include environment
              variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WeatherFile",
			usage: `
              WeatherFile is the path to the daily weather series: a CSV file, or
              an Excel workbook if the name ends in .xlsx. The header row must
              name the rain, maxt, mint, and evap columns. It can include
              environment variables.`,
			defaultVal: "weather.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WeatherSheet",
			usage: `
              WeatherSheet selects the workbook sheet to read weather from when
              WeatherFile is an Excel workbook. If empty, the first sheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the daily summary CSV that the run writes.
              It can include environment variables.`,
			defaultVal: "resom_output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SoilLayers",
			usage: `
              SoilLayers lists the soil layer thicknesses [mm] from the surface
              down, used to distribute tilled-in residue over depth.`,
			defaultVal: []float64{100, 150, 300, 300},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Days",
			usage: `
              Days is the number of days to simulate. If < 1, the whole weather
              series is simulated.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OptimumDecompTemp",
			usage: `
              OptimumDecompTemp is the average air temperature [°C] at which
              decomposition proceeds at the potential rate.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MaxCumulativeEvap",
			usage: `
              MaxCumulativeEvap is the cumulative potential soil evaporation [mm]
              at which the moisture factor reaches zero.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CNRatioCoeff",
			usage: `
              CNRatioCoeff is the decay coefficient of the C:N ratio
              decomposition factor.`,
			defaultVal: 0.277,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CNRatioThreshold",
			usage: `
              CNRatioThreshold is the C:N ratio above which decomposition is
              retarded. Zero disables the C:N limitation.`,
			defaultVal: 25.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CriticalResidueWeight",
			usage: `
              CriticalResidueWeight is the lying residue mass [kg/ha] above which
              soil contact limits decomposition.`,
			defaultVal: 2000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TotalLeachRain",
			usage: `
              TotalLeachRain is the daily rainfall [mm] that leaches all mineral
              nutrients out of the surface residue.`,
			defaultVal: 25.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MinRainToLeach",
			usage: `
              MinRainToLeach is the minimum daily rainfall [mm] for mineral
              nutrient leaching to occur.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ResetDeficitRain",
			usage: `
              ResetDeficitRain is the daily precipitation [mm] above which the
              cumulative evaporation deficit is reset instead of accumulated.`,
			defaultVal: 4.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StandingExtinctionCoeff",
			usage: `
              StandingExtinctionCoeff is the light extinction coefficient applied
              to the covered area of standing residue.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FaecesFraction",
			usage: `
              FaecesFraction is the fraction of deposited faeces organic matter
              retained on the surface.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DefaultCPRatio",
			usage: `
              DefaultCPRatio is the carbon to phosphorus ratio assumed for
              initial residue when the initial conditions give none.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CriticalMinimumOrganicC",
			usage: `
              CriticalMinimumOrganicC is the lying residue carbon [kg/ha] below
              which a pool decomposes completely.`,
			defaultVal: 0.004,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DecompTolerance",
			usage: `
              DecompTolerance is the numerical tolerance [kg/ha] allowed between
              actual and potential decomposition amounts.`,
			defaultVal: 1e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RESOM")

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
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
			case []float64:
				strs := floatSliceToStrings(option.defaultVal.([]float64))
				if option.shorthand == "" {
					set.StringSlice(option.name, strs, option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, strs, option.usage)
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
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("resom: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "resom",
	Short: "A surface residue organic matter model.",
	Long: `ResOM simulates the daily carbon, nitrogen, and phosphorus balance of
crop residue on the soil surface, including decomposition, nutrient
leaching, ground cover, and tillage incorporation into the soil.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'RESOM_var'
where 'var' is the name of the variable to be set. Tillage events can only
be specified in the configuration file, as a [[Tillage]] table per event
with Day, Action, Fraction, and Depth keys.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ResOM.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ResOM v%s\n", resom.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates the surface residue balance through the configured daily
weather series and writes a daily summary CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		layers, err := GetFloat64Slice("SoilLayers", Cfg)
		if err != nil {
			return err
		}
		tillage, err := TillageEvents(Cfg)
		if err != nil {
			return err
		}
		return Run(&RunSettings{
			RegistryFile:          expand(Cfg.GetString("RegistryFile")),
			InitialConditionsFile: expand(Cfg.GetString("InitialConditionsFile")),
			WeatherFile:           expand(Cfg.GetString("WeatherFile")),
			WeatherSheet:          Cfg.GetString("WeatherSheet"),
			OutputFile:            expand(Cfg.GetString("OutputFile")),
			SoilLayers:            layers,
			Tillage:               tillage,
			Days:                  Cfg.GetInt("Days"),
			Params:                modelParamsFromCfg(Cfg),
		})
	},
	DisableAutoGenTag: true,
}
