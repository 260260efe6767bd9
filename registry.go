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
	"math"

	"github.com/BurntSushi/toml"
)

// ResidueTypeConstants holds the immutable parameters of one organic
// matter type. A registry entry is looked up the first time residue of a
// new type is added and shared by every pool of that type.
type ResidueTypeConstants struct {
	// CarbonFraction is the carbon content of added dry mass [0-1].
	CarbonFraction float64 `toml:"carbonfraction"`

	// NO3Ppm, NH4Ppm, and PO4Ppm give the mineral nutrient content of
	// added residue [mg/kg dry mass].
	NO3Ppm float64 `toml:"no3ppm"`
	NH4Ppm float64 `toml:"nh4ppm"`
	PO4Ppm float64 `toml:"po4ppm"`

	// SpecificArea is the ground area covered per unit residue
	// mass [ha/kg].
	SpecificArea float64 `toml:"specificarea"`

	// ContactContribution is 1 if lying residue of this type counts
	// toward the soil contact limitation, otherwise 0.
	ContactContribution float64 `toml:"contactcontribution"`

	// PotentialDecompRate is the fraction of the pool that can decompose
	// per day under optimal conditions [0-1].
	PotentialDecompRate float64 `toml:"potentialdecomprate"`

	// FractionC, FractionN, and FractionP distribute added carbon,
	// nitrogen, and phosphorus over the carbohydrate, cellulose, and
	// lignin classes. Each vector sums to 1.
	FractionC [nClasses]float64 `toml:"fractionc"`
	FractionN [nClasses]float64 `toml:"fractionn"`
	FractionP [nClasses]float64 `toml:"fractionp"`
}

// valid checks the bounded ranges of the constants.
func (c *ResidueTypeConstants) valid(name string) error {
	if c.CarbonFraction < 0 || c.CarbonFraction > 1 {
		return fmt.Errorf("resom: residue type %q: carbon fraction %g outside [0,1]", name, c.CarbonFraction)
	}
	if c.PotentialDecompRate < 0 || c.PotentialDecompRate > 1 {
		return fmt.Errorf("resom: residue type %q: potential decomposition rate %g outside [0,1]", name, c.PotentialDecompRate)
	}
	if c.ContactContribution != 0 && c.ContactContribution != 1 {
		return fmt.Errorf("resom: residue type %q: contact contribution %g is not 0 or 1", name, c.ContactContribution)
	}
	for _, f := range []struct {
		label string
		v     [nClasses]float64
	}{{"fractionc", c.FractionC}, {"fractionn", c.FractionN}, {"fractionp", c.FractionP}} {
		sum := f.v[Carbohydrate] + f.v[Cellulose] + f.v[Lignin]
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("resom: residue type %q: %s sums to %g, want 1", name, f.label, sum)
		}
	}
	return nil
}

// TypeRegistry maps organic matter type names to their constants.
type TypeRegistry struct {
	types map[string]*ResidueTypeConstants
}

// NewTypeRegistry creates a registry from the given type descriptions.
func NewTypeRegistry(types map[string]*ResidueTypeConstants) (*TypeRegistry, error) {
	for name, cst := range types {
		if err := cst.valid(name); err != nil {
			return nil, err
		}
	}
	return &TypeRegistry{types: types}, nil
}

// registryFile is the on-disk TOML layout of a residue type registry.
type registryFile struct {
	Types map[string]*ResidueTypeConstants `toml:"types"`
}

// LoadTypeRegistry reads a residue type registry from a TOML file with
// one [types.<name>] table per organic matter type.
func LoadTypeRegistry(filename string) (*TypeRegistry, error) {
	var f registryFile
	if _, err := toml.DecodeFile(filename, &f); err != nil {
		return nil, fmt.Errorf("resom: reading residue type registry: %v", err)
	}
	if len(f.Types) == 0 {
		return nil, fmt.Errorf("resom: residue type registry %s defines no types", filename)
	}
	return NewTypeRegistry(f.Types)
}

// Constants returns the constants for the named organic matter type, or a
// ConfigurationError if the type is not registered.
func (r *TypeRegistry) Constants(omType string) (*ResidueTypeConstants, error) {
	cst, ok := r.types[omType]
	if !ok {
		return nil, &ConfigurationError{Type: omType}
	}
	return cst, nil
}

// Types returns the registered organic matter type names.
func (r *TypeRegistry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}
