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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTypeRegistry(t *testing.T) {
	contents := `
[types.wheat]
carbonfraction = 0.4
no3ppm = 9.0
nh4ppm = 9.0
po4ppm = 10.0
specificarea = 0.0005
contactcontribution = 1.0
potentialdecomprate = 0.1
fractionc = [0.6, 0.3, 0.1]
fractionn = [0.5, 0.3, 0.2]
fractionp = [0.6, 0.3, 0.1]
`
	filename := filepath.Join(t.TempDir(), "types.toml")
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadTypeRegistry(filename)
	if err != nil {
		t.Fatal(err)
	}
	cst, err := r.Constants("wheat")
	if err != nil {
		t.Fatal(err)
	}
	if cst.CarbonFraction != 0.4 {
		t.Errorf("carbon fraction = %g, want 0.4", cst.CarbonFraction)
	}
	if cst.FractionN != [nClasses]float64{0.5, 0.3, 0.2} {
		t.Errorf("fractionn = %v", cst.FractionN)
	}

	_, err = r.Constants("barley")
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("err = %v, want ConfigurationError", err)
	}
}

func TestLoadTypeRegistryEmpty(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(filename, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTypeRegistry(filename); err == nil {
		t.Fatal("expected error for a registry with no types")
	}
}

func TestRegistryValidation(t *testing.T) {
	base := func() *ResidueTypeConstants {
		return &ResidueTypeConstants{
			CarbonFraction:      0.4,
			SpecificArea:        0.0002,
			ContactContribution: 1,
			PotentialDecompRate: 0.1,
			FractionC:           [nClasses]float64{0.6, 0.3, 0.1},
			FractionN:           [nClasses]float64{0.6, 0.3, 0.1},
			FractionP:           [nClasses]float64{0.6, 0.3, 0.1},
		}
	}
	cases := []struct {
		name   string
		modify func(*ResidueTypeConstants)
	}{
		{"carbon fraction above 1", func(c *ResidueTypeConstants) { c.CarbonFraction = 1.5 }},
		{"negative decomposition rate", func(c *ResidueTypeConstants) { c.PotentialDecompRate = -0.1 }},
		{"fractional contact contribution", func(c *ResidueTypeConstants) { c.ContactContribution = 0.5 }},
		{"class fractions not summing to 1", func(c *ResidueTypeConstants) { c.FractionC = [nClasses]float64{0.5, 0.3, 0.1} }},
	}
	for _, tc := range cases {
		cst := base()
		tc.modify(cst)
		if _, err := NewTypeRegistry(map[string]*ResidueTypeConstants{"bad": cst}); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	if _, err := NewTypeRegistry(map[string]*ResidueTypeConstants{"good": base()}); err != nil {
		t.Errorf("valid constants rejected: %v", err)
	}
}

func TestRegistryTypes(t *testing.T) {
	r := testRegistry(t)
	names := r.Types()
	if len(names) != 2 {
		t.Fatalf("types = %v, want 2 entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["wheat"] || !seen["manure"] {
		t.Errorf("types = %v, want wheat and manure", names)
	}
}
