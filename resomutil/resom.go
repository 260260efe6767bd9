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

package resomutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/soilmodel/resom"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// RunSettings holds everything needed to run a standalone simulation.
type RunSettings struct {
	RegistryFile          string
	InitialConditionsFile string
	WeatherFile           string
	WeatherSheet          string
	OutputFile            string
	SoilLayers            []float64
	Tillage               []TillageEvent
	Days                  int

	// Params overrides the model's default parameters if non-nil.
	Params *ModelParams
}

// ModelParams are the tunable model parameters exposed as configuration
// keys of the same names.
type ModelParams struct {
	OptimumDecompTemp       float64
	MaxCumulativeEvap       float64
	CNRatioCoeff            float64
	CNRatioThreshold        float64
	CriticalResidueWeight   float64
	TotalLeachRain          float64
	MinRainToLeach          float64
	ResetDeficitRain        float64
	StandingExtinctionCoeff float64
	FaecesFraction          float64
	DefaultCPRatio          float64
	CriticalMinimumOrganicC float64
	DecompTolerance         float64
}

// modelParamsFromCfg reads the model parameter keys from the configuration.
func modelParamsFromCfg(cfg *viper.Viper) *ModelParams {
	return &ModelParams{
		OptimumDecompTemp:       cfg.GetFloat64("OptimumDecompTemp"),
		MaxCumulativeEvap:       cfg.GetFloat64("MaxCumulativeEvap"),
		CNRatioCoeff:            cfg.GetFloat64("CNRatioCoeff"),
		CNRatioThreshold:        cfg.GetFloat64("CNRatioThreshold"),
		CriticalResidueWeight:   cfg.GetFloat64("CriticalResidueWeight"),
		TotalLeachRain:          cfg.GetFloat64("TotalLeachRain"),
		MinRainToLeach:          cfg.GetFloat64("MinRainToLeach"),
		ResetDeficitRain:        cfg.GetFloat64("ResetDeficitRain"),
		StandingExtinctionCoeff: cfg.GetFloat64("StandingExtinctionCoeff"),
		FaecesFraction:          cfg.GetFloat64("FaecesFraction"),
		DefaultCPRatio:          cfg.GetFloat64("DefaultCPRatio"),
		CriticalMinimumOrganicC: cfg.GetFloat64("CriticalMinimumOrganicC"),
		DecompTolerance:         cfg.GetFloat64("DecompTolerance"),
	}
}

// apply copies the parameters onto the model.
func (p *ModelParams) apply(s *resom.SurfaceOM) {
	s.OptimumDecompTemp = p.OptimumDecompTemp
	s.MaxCumulativeEvap = p.MaxCumulativeEvap
	s.CNRatioCoeff = p.CNRatioCoeff
	s.CNRatioThreshold = p.CNRatioThreshold
	s.CriticalResidueWeight = p.CriticalResidueWeight
	s.TotalLeachRain = p.TotalLeachRain
	s.MinRainToLeach = p.MinRainToLeach
	s.ResetDeficitRain = p.ResetDeficitRain
	s.StandingExtinctionCoeff = p.StandingExtinctionCoeff
	s.FaecesFraction = p.FaecesFraction
	s.DefaultCPRatio = p.DefaultCPRatio
	s.CriticalMinimumOrganicC = p.CriticalMinimumOrganicC
	s.DecompTolerance = p.DecompTolerance
}

// Run performs a standalone surface residue simulation: it loads the
// residue type registry, initial pools, and weather series, steps the
// model through each day applying scheduled tillage between cycles, and
// writes a daily summary CSV. Standalone runs are not coupled to a soil
// model, so every decomposition offer is accepted in full.
func Run(settings *RunSettings) error {
	registry, err := resom.LoadTypeRegistry(settings.RegistryFile)
	if err != nil {
		return err
	}
	weather, err := readWeather(settings.WeatherFile, settings.WeatherSheet)
	if err != nil {
		return err
	}
	if settings.Days > 0 && settings.Days < len(weather) {
		weather = weather[:settings.Days]
	}

	s := resom.NewSurfaceOM(registry, settings.SoilLayers, resom.PassthroughNutrientModel{})
	if settings.Params != nil {
		settings.Params.apply(s)
	}
	if settings.InitialConditionsFile != "" {
		initial, err := resom.LoadInitialConditions(settings.InitialConditionsFile)
		if err != nil {
			return err
		}
		s.InitFuncs = append(s.InitFuncs, resom.InitialConditions(initial))
	}
	s.DayFuncs = append(s.DayFuncs, resom.MassBudgetCheck())
	if err := s.Init(); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"pools":   len(s.Pools()),
		"days":    len(weather),
		"residue": s.TotalAmount(),
	}).Info("starting surface residue simulation")

	out, err := createOutput(settings.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()
	summary := resom.NewSummaryWriter(out)

	tillage := settings.Tillage
	for day, w := range weather {
		for len(tillage) > 0 && tillage[0].Day <= day {
			e := tillage[0]
			tillage = tillage[1:]
			if err := s.Incorporate(e.Action, e.Fraction, e.Depth); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"day":      day,
				"action":   e.Action,
				"fraction": e.Fraction,
				"depth":    e.Depth,
			}).Info("tillage applied")
		}
		if err := s.StepDay(w); err != nil {
			return err
		}
		if err := summary.WriteDay(s); err != nil {
			return err
		}
	}
	if err := summary.Flush(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"days":    s.Day,
		"residue": s.TotalAmount(),
		"cover":   s.Cover(),
		"output":  settings.OutputFile,
	}).Info("simulation finished")
	return nil
}

// readWeather reads a weather series from a CSV file, or from an Excel
// workbook if the file name ends in .xlsx.
func readWeather(filename, sheet string) ([]resom.WeatherSnapshot, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return resom.ReadWeatherXLSX(filename, sheet)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("resom: opening weather file: %v", err)
	}
	defer f.Close()
	return resom.ReadWeatherCSV(f)
}

func createOutput(filename string) (*os.File, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("resom: the OutputFile directory doesn't exist: %v", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("resom: creating output file: %v", err)
	}
	return f, nil
}
