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

package resom

import (
	"fmt"
	"io"
	"math"
	"time"
)

// DomainManipulator is a function that operates on the whole model state,
// for example one step of the daily cycle.
type DomainManipulator func(s *SurfaceOM) error

// Init runs the model initialization functions, such as loading initial
// residue pools. It must be called before the first daily cycle.
func (s *SurfaceOM) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// StepDay runs one complete daily cycle for the given weather. The steps
// in DayFuncs execute in order and to completion; any error terminates
// the run. Tillage, irrigation, and residue addition events may be
// applied between calls to StepDay but never during one.
func (s *SurfaceOM) StepDay(w WeatherSnapshot) error {
	s.weather = w
	for _, f := range s.DayFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	s.offer = nil
	s.Day++
	return nil
}

// Run steps the model through the given weather series.
func (s *SurfaceOM) Run(weather []WeatherSnapshot) error {
	for _, w := range weather {
		if err := s.StepDay(w); err != nil {
			return err
		}
	}
	return nil
}

// UpdateMoistureDeficit returns a function that updates the cumulative
// potential soil evaporation deficit from today's weather and pending
// irrigation. Precipitation above the reset threshold restarts the
// accumulation instead of adding to it; the deficit never goes negative.
// Pending irrigation is consumed and zeroed.
func UpdateMoistureDeficit() DomainManipulator {
	return func(s *SurfaceOM) error {
		precip := s.weather.Rain + s.PendingIrrigation
		if precip > s.ResetDeficitRain {
			s.CumEvapDeficit = s.weather.Eos - precip
		} else {
			s.CumEvapDeficit += s.weather.Eos - precip
		}
		if s.CumEvapDeficit < 0 {
			s.CumEvapDeficit = 0
		}
		s.PendingIrrigation = 0
		return nil
	}
}

// Leaching returns a function that leaches mineral nutrients from the
// residue when today's rainfall reaches the leaching threshold.
func Leaching() DomainManipulator {
	return func(s *SurfaceOM) error {
		if s.weather.Rain >= s.MinRainToLeach {
			return s.Leach(s.weather.Rain)
		}
		return nil
	}
}

// Log returns a function that writes a one-line daily status message to w.
func Log(w io.Writer) DomainManipulator {
	startTime := time.Now()
	return func(s *SurfaceOM) error {
		fmt.Fprintf(w, "Day %-5d walltime=%6.3gs  cover=%.3f  residue=%8.1f kg/ha  deficit=%5.1f mm\n",
			s.Day, time.Since(startTime).Seconds(), s.Cover(), s.TotalAmount(), s.CumEvapDeficit)
		return nil
	}
}

// MassBudgetCheck returns a function that verifies that every pool field
// is finite and that no mass is more than marginally negative. A nutrient
// model operating within tolerance can leave N or P a hair below zero
// (see Decomp); anything worse indicates a mass balance bug and stops
// the run.
func MassBudgetCheck() DomainManipulator {
	const slack = 1e-6 // kg/ha
	check := func(pool, field string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("resom: mass budget: pool %q %s is %g", pool, field, v)
		}
		if v < -slack {
			return fmt.Errorf("resom: mass budget: pool %q %s is negative (%g kg/ha)", pool, field, v)
		}
		return nil
	}
	return func(s *SurfaceOM) error {
		for _, p := range s.pools {
			for _, st := range []struct {
				label string
				oms   *[nClasses]OMFraction
			}{{"standing", &p.Standing}, {"lying", &p.Lying}} {
				for i := range st.oms {
					om := st.oms[i]
					for _, f := range []struct {
						name string
						v    float64
					}{{"amount", om.Amount}, {"C", om.C}, {"N", om.N}, {"P", om.P}} {
						if err := check(p.Name, st.label+" "+f.name, f.v); err != nil {
							return err
						}
					}
				}
			}
			for _, f := range []struct {
				name string
				v    float64
			}{{"no3", p.NO3}, {"nh4", p.NH4}, {"po4", p.PO4}} {
				if err := check(p.Name, f.name, f.v); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
