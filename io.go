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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
)

// InitialResidue describes one residue pool present at simulation start.
type InitialResidue struct {
	// Name of the pool; defaults to the type name.
	Name string `toml:"name"`

	// Type is the organic matter type in the residue type registry.
	Type string `toml:"type"`

	// Mass is the residue dry mass [kg/ha].
	Mass float64 `toml:"mass"`

	// StandingFraction is the fraction of the mass held in standing
	// material [0-1].
	StandingFraction float64 `toml:"standingfraction"`

	// CNRatio is the carbon to nitrogen mass ratio of the residue.
	CNRatio float64 `toml:"cnratio"`

	// CPRatio is the carbon to phosphorus mass ratio of the residue.
	// If zero, the model's default C:P ratio is used.
	CPRatio float64 `toml:"cpratio"`
}

// initialConditionsFile is the on-disk TOML layout of an initial residue
// description: one [[residue]] table per pool.
type initialConditionsFile struct {
	Residue []InitialResidue `toml:"residue"`
}

// LoadInitialConditions reads initial residue pool descriptions from a
// TOML file.
func LoadInitialConditions(filename string) ([]InitialResidue, error) {
	var f initialConditionsFile
	if _, err := toml.DecodeFile(filename, &f); err != nil {
		return nil, fmt.Errorf("resom: reading initial conditions: %v", err)
	}
	return f.Residue, nil
}

// InitialConditions returns a function that creates the given residue
// pools at simulation start. Mass is converted to carbon through the
// type's carbon fraction and to nitrogen and phosphorus through the given
// ratios, distributed over material classes exactly as in Add, except
// that the standing fraction of the mass enters the standing sub-pools.
func InitialConditions(residues []InitialResidue) DomainManipulator {
	return func(s *SurfaceOM) error {
		for _, r := range residues {
			if err := s.addInitial(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *SurfaceOM) addInitial(r InitialResidue) error {
	pool, err := s.pool(r.Name, r.Type)
	if err != nil {
		return err
	}
	cst := pool.Constants

	cpr := r.CPRatio
	if cpr == 0 {
		cpr = s.DefaultCPRatio
	}
	c := r.Mass * cst.CarbonFraction
	n := divide(c, r.CNRatio)
	p := divide(c, cpr)

	pool.NO3 += r.Mass * cst.NO3Ppm / 1e6
	pool.NH4 += r.Mass * cst.NH4Ppm / 1e6
	pool.PO4 += r.Mass * cst.PO4Ppm / 1e6

	sf := bound(r.StandingFraction, 0, 1)
	for i := 0; i < nClasses; i++ {
		pool.Standing[i].Amount += r.Mass * sf * cst.FractionC[i]
		pool.Standing[i].C += c * sf * cst.FractionC[i]
		pool.Standing[i].N += n * sf * cst.FractionN[i]
		pool.Standing[i].P += p * sf * cst.FractionP[i]

		pool.Lying[i].Amount += r.Mass * (1 - sf) * cst.FractionC[i]
		pool.Lying[i].C += c * (1 - sf) * cst.FractionC[i]
		pool.Lying[i].N += n * (1 - sf) * cst.FractionN[i]
		pool.Lying[i].P += p * (1 - sf) * cst.FractionP[i]
	}
	return nil
}

// OutputNames lists the scalar results available from Results, in the
// order they are written by SummaryWriter.
var OutputNames = []string{
	"Cover", "TotalAmount", "TotalC", "TotalN", "TotalP",
	"StandingAmount", "LyingAmount", "MineralN", "MineralP",
	"CumEvapDeficit",
}

// Results returns the named scalar model outputs. With no arguments it
// returns all outputs in OutputNames; an unknown name is an error.
func (s *SurfaceOM) Results(names ...string) (map[string]float64, error) {
	getters := map[string]func() float64{
		"Cover":          s.Cover,
		"TotalAmount":    s.TotalAmount,
		"TotalC":         s.TotalC,
		"TotalN":         s.TotalN,
		"TotalP":         s.TotalP,
		"StandingAmount": s.StandingAmount,
		"LyingAmount":    s.LyingAmount,
		"MineralN":       s.MineralN,
		"MineralP":       s.MineralP,
		"CumEvapDeficit": func() float64 { return s.CumEvapDeficit },
	}
	if len(names) == 0 {
		names = OutputNames
	}
	out := make(map[string]float64, len(names))
	for _, name := range names {
		g, ok := getters[name]
		if !ok {
			return nil, fmt.Errorf("resom: unknown output variable %q", name)
		}
		out[name] = g()
	}
	return out, nil
}

// SummaryWriter writes one CSV row of scalar model outputs per simulated
// day.
type SummaryWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewSummaryWriter creates a SummaryWriter writing to w.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: csv.NewWriter(w)}
}

// WriteDay writes the current model outputs as one row, preceded by a
// header row on first use.
func (sw *SummaryWriter) WriteDay(s *SurfaceOM) error {
	if !sw.wroteHeader {
		if err := sw.w.Write(append([]string{"day"}, OutputNames...)); err != nil {
			return fmt.Errorf("resom: writing summary header: %v", err)
		}
		sw.wroteHeader = true
	}
	results, err := s.Results()
	if err != nil {
		return err
	}
	row := make([]string, 0, len(OutputNames)+1)
	row = append(row, strconv.Itoa(s.Day))
	for _, name := range OutputNames {
		row = append(row, strconv.FormatFloat(results[name], 'g', -1, 64))
	}
	if err := sw.w.Write(row); err != nil {
		return fmt.Errorf("resom: writing summary row: %v", err)
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (sw *SummaryWriter) Flush() error {
	sw.w.Flush()
	return sw.w.Error()
}
