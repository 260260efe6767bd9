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
	"strings"
	"testing"
)

func TestUpdateMoistureDeficit(t *testing.T) {
	s, _ := newTestModel(t)
	step := UpdateMoistureDeficit()

	// Dry days accumulate the potential evaporation.
	s.weather = WeatherSnapshot{Eos: 3}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if different(s.CumEvapDeficit, 6, testTolerance) {
		t.Errorf("deficit = %g, want 6", s.CumEvapDeficit)
	}

	// Light rain reduces the deficit without resetting it.
	s.weather = WeatherSnapshot{Rain: 2, Eos: 3}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if different(s.CumEvapDeficit, 7, testTolerance) {
		t.Errorf("deficit = %g, want 7", s.CumEvapDeficit)
	}

	// Rain above the reset threshold restarts the accumulation.
	s.weather = WeatherSnapshot{Rain: 10, Eos: 3}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if s.CumEvapDeficit != 0 {
		t.Errorf("deficit = %g, want 0 after heavy rain", s.CumEvapDeficit)
	}
}

func TestUpdateMoistureDeficitIrrigation(t *testing.T) {
	s, _ := newTestModel(t)
	step := UpdateMoistureDeficit()
	s.CumEvapDeficit = 15

	// Irrigation counts as precipitation for one day only.
	s.Irrigate(10)
	s.weather = WeatherSnapshot{Eos: 2}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if s.CumEvapDeficit != 0 {
		t.Errorf("deficit = %g, want 0 after irrigation reset", s.CumEvapDeficit)
	}
	if s.PendingIrrigation != 0 {
		t.Errorf("pending irrigation = %g, not consumed", s.PendingIrrigation)
	}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if different(s.CumEvapDeficit, 2, testTolerance) {
		t.Errorf("deficit = %g, want 2 on the following day", s.CumEvapDeficit)
	}
}

func TestLeachingThreshold(t *testing.T) {
	s, m := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	step := Leaching()

	s.weather = WeatherSnapshot{Rain: 9.9}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if len(m.leachate) != 0 {
		t.Errorf("leaching occurred below the rain threshold")
	}

	s.weather = WeatherSnapshot{Rain: 10}
	if err := step(s); err != nil {
		t.Fatal(err)
	}
	if len(m.leachate) == 0 {
		t.Errorf("no leaching at the rain threshold")
	}
}

func TestStepDayOrderAndCount(t *testing.T) {
	s, _ := newTestModel(t)
	var order []string
	s.DayFuncs = []DomainManipulator{
		func(*SurfaceOM) error { order = append(order, "a"); return nil },
		func(*SurfaceOM) error { order = append(order, "b"); return nil },
	}
	if err := s.Run(make([]WeatherSnapshot, 3)); err != nil {
		t.Fatal(err)
	}
	if s.Day != 3 {
		t.Errorf("day = %d, want 3", s.Day)
	}
	if strings.Join(order, "") != "ababab" {
		t.Errorf("execution order = %v", order)
	}
}

func TestLogWrites(t *testing.T) {
	s, _ := newTestModel(t)
	var b strings.Builder
	s.DayFuncs = append(s.DayFuncs, Log(&b))
	if err := s.StepDay(calmDay); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "cover=") {
		t.Errorf("log output = %q", b.String())
	}
}

func TestMassBudgetCheck(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	check := MassBudgetCheck()
	if err := check(s); err != nil {
		t.Fatalf("healthy pools failed the budget check: %v", err)
	}

	p := s.Pools()[0]
	p.Lying[Cellulose].N = -1
	if err := check(s); err == nil {
		t.Error("negative mass passed the budget check")
	}
	p.Lying[Cellulose].N = 1
	p.NO3 = -1e-7 // within the decomposition tolerance slack
	if err := check(s); err != nil {
		t.Errorf("marginally negative mineral failed the budget check: %v", err)
	}
}
