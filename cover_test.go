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
	"math"
	"testing"
)

func TestCoverEmpty(t *testing.T) {
	s, _ := newTestModel(t)
	if v := s.Cover(); v != 0 {
		t.Errorf("cover = %g, want 0 with no residue", v)
	}
}

func TestPoolCoverLying(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	// 1000 kg/ha at 0.0005 ha/kg covers an area index of 0.5.
	want := 1 - math.Exp(-0.5)
	if v := s.Cover(); different(v, want, testTolerance) {
		t.Errorf("cover = %g, want %g", v, want)
	}
}

func TestPoolCoverStandingDiscount(t *testing.T) {
	s, _ := newTestModel(t)
	lying := InitialConditions([]InitialResidue{{
		Name: "flat", Type: "wheat", Mass: 1000, StandingFraction: 0, CNRatio: 40,
	}})
	if err := lying(s); err != nil {
		t.Fatal(err)
	}
	flatCover := s.Cover()

	s2, _ := newTestModel(t)
	standing := InitialConditions([]InitialResidue{{
		Name: "erect", Type: "wheat", Mass: 1000, StandingFraction: 1, CNRatio: 40,
	}})
	if err := standing(s2); err != nil {
		t.Fatal(err)
	}
	erectCover := s2.Cover()

	if erectCover >= flatCover {
		t.Errorf("standing cover %g not less than lying cover %g", erectCover, flatCover)
	}
	want := 1 - math.Exp(-0.5*0.5) // extinction coefficient discounts the area
	if different(erectCover, want, testTolerance) {
		t.Errorf("standing cover = %g, want %g", erectCover, want)
	}
}

// Cover combines over pools as independent overlap, so it is
// order-independent and never exceeds 1.
func TestCoverCombination(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(2000, 20, 2, "wheat", "b"); err != nil {
		t.Fatal(err)
	}
	a := 1 - math.Exp(-0.5)
	b := 1 - math.Exp(-1.0)
	want := 1 - (1-a)*(1-b)
	if v := s.Cover(); different(v, want, testTolerance) {
		t.Errorf("cover = %g, want %g", v, want)
	}

	s2, _ := newTestModel(t)
	if err := s2.Add(2000, 20, 2, "wheat", "b"); err != nil {
		t.Fatal(err)
	}
	if err := s2.Add(1000, 10, 1, "wheat", "a"); err != nil {
		t.Fatal(err)
	}
	if different(s.Cover(), s2.Cover(), testTolerance) {
		t.Errorf("cover depends on pool order: %g vs %g", s.Cover(), s2.Cover())
	}
}

func TestCoverBounded(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1e7, 1e5, 1e4, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	if v := s.Cover(); v < 0 || v > 1 {
		t.Errorf("cover = %g, outside [0,1]", v)
	}
}
