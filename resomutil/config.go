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
	"sort"
	"strconv"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// expand expands environment variables in a configuration value.
func expand(s string) string {
	return os.ExpandEnv(s)
}

func floatSliceToStrings(v []float64) []string {
	s := make([]string, len(v))
	for i, f := range v {
		s[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s
}

// GetFloat64Slice returns a numeric slice configuration variable, which
// viper may hold as a string slice (from a command-line flag) or as a
// native array (from a configuration file).
func GetFloat64Slice(varName string, cfg *viper.Viper) ([]float64, error) {
	items, err := cast.ToSliceE(cfg.Get(varName))
	if err != nil {
		// A flag-supplied value is a []string rather than a []interface{}.
		strs, err2 := cast.ToStringSliceE(cfg.Get(varName))
		if err2 != nil {
			return nil, fmt.Errorf("resom: configuration variable %s: %v", varName, err)
		}
		items = make([]interface{}, len(strs))
		for i, s := range strs {
			items[i] = s
		}
	}
	out := make([]float64, len(items))
	for i, item := range items {
		v, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, fmt.Errorf("resom: configuration variable %s element %d: %v", varName, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// TillageEvent is one tillage operation applied between daily cycles.
type TillageEvent struct {
	// Day is the 0-based simulation day before which the event applies.
	Day int

	// Action names the implement, for example "disc" or "chisel".
	Action string

	// Fraction is the fraction of surface residue incorporated [0-1].
	Fraction float64

	// Depth is the tillage depth [mm].
	Depth float64
}

// TillageEvents reads the tillage schedule from the Tillage configuration
// key, sorted by day. The schedule can only be given in the configuration
// file, as an array of tables with Day, Action, Fraction, and Depth keys.
func TillageEvents(cfg *viper.Viper) ([]TillageEvent, error) {
	raw := cfg.Get("Tillage")
	if raw == nil {
		return nil, nil
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("resom: configuration variable Tillage: %v", err)
	}
	out := make([]TillageEvent, len(items))
	for i, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("resom: Tillage event %d: %v", i, err)
		}
		e := TillageEvent{Action: "tillage"}
		if v, ok := m["day"]; ok {
			if e.Day, err = cast.ToIntE(v); err != nil {
				return nil, fmt.Errorf("resom: Tillage event %d day: %v", i, err)
			}
		}
		if v, ok := m["action"]; ok {
			if e.Action, err = cast.ToStringE(v); err != nil {
				return nil, fmt.Errorf("resom: Tillage event %d action: %v", i, err)
			}
		}
		if v, ok := m["fraction"]; ok {
			if e.Fraction, err = cast.ToFloat64E(v); err != nil {
				return nil, fmt.Errorf("resom: Tillage event %d fraction: %v", i, err)
			}
		}
		if v, ok := m["depth"]; ok {
			if e.Depth, err = cast.ToFloat64E(v); err != nil {
				return nil, fmt.Errorf("resom: Tillage event %d depth: %v", i, err)
			}
		}
		out[i] = e
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
