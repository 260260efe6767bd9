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
	"strings"

	"github.com/tealeg/xlsx"
)

// WeatherSnapshot is one day of weather forcing supplied by the host
// climate provider.
type WeatherSnapshot struct {
	Rain float64 `desc:"Precipitation" units:"mm/day"`
	MinT float64 `desc:"Minimum air temperature" units:"°C"`
	MaxT float64 `desc:"Maximum air temperature" units:"°C"`
	Eos  float64 `desc:"Potential soil evaporation" units:"mm/day"`
}

// Column names expected in weather input, in any order. Additional
// columns are ignored.
var weatherColumns = []string{"rain", "maxt", "mint", "evap"}

// weatherIndices maps the required column names to their positions in a
// header row.
func weatherIndices(header []string) (map[string]int, error) {
	idx := make(map[string]int)
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range weatherColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("resom: weather input is missing column %q", name)
		}
	}
	return idx, nil
}

func weatherFromRow(idx map[string]int, fields []string, line int) (WeatherSnapshot, error) {
	var w WeatherSnapshot
	for _, col := range []struct {
		name string
		dst  *float64
	}{{"rain", &w.Rain}, {"maxt", &w.MaxT}, {"mint", &w.MinT}, {"evap", &w.Eos}} {
		i := idx[col.name]
		if i >= len(fields) {
			return w, fmt.Errorf("resom: weather row %d has no %q field", line, col.name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return w, fmt.Errorf("resom: weather row %d, column %q: %v", line, col.name, err)
		}
		*col.dst = v
	}
	return w, nil
}

// ReadWeatherCSV reads a daily weather series from CSV data with a header
// row naming at least the rain, maxt, mint, and evap columns.
func ReadWeatherCSV(r io.Reader) ([]WeatherSnapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("resom: reading weather header: %v", err)
	}
	idx, err := weatherIndices(header)
	if err != nil {
		return nil, err
	}
	var out []WeatherSnapshot
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resom: reading weather row %d: %v", line, err)
		}
		w, err := weatherFromRow(idx, fields, line)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// ReadWeatherXLSX reads a daily weather series from the named sheet of a
// Microsoft Excel workbook; an empty sheet name selects the first sheet.
// The first row must name at least the rain, maxt, mint, and evap columns.
func ReadWeatherXLSX(filename, sheet string) ([]WeatherSnapshot, error) {
	f, err := xlsx.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("resom: opening weather workbook: %v", err)
	}
	var sh *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("resom: weather workbook %s has no sheets", filename)
		}
		sh = f.Sheets[0]
	} else {
		var ok bool
		sh, ok = f.Sheet[sheet]
		if !ok {
			return nil, fmt.Errorf("resom: weather workbook %s has no sheet %q", filename, sheet)
		}
	}
	if len(sh.Rows) == 0 {
		return nil, fmt.Errorf("resom: weather sheet %q is empty", sh.Name)
	}
	header := make([]string, len(sh.Rows[0].Cells))
	for i, c := range sh.Rows[0].Cells {
		header[i] = c.Value
	}
	idx, err := weatherIndices(header)
	if err != nil {
		return nil, err
	}
	var out []WeatherSnapshot
	for r, row := range sh.Rows[1:] {
		if len(row.Cells) == 0 {
			continue
		}
		fields := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			fields[i] = c.Value
		}
		w, err := weatherFromRow(idx, fields, r+2)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
