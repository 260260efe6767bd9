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
	"testing"
)

// All environmental modifier factors must stay in [0,1] for any input.
func TestFactorBounds(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1e6, 100, 10, "wheat", ""); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		f    func() float64
	}{
		{"temperature freezing", func() float64 { return s.TemperatureFactor(-30, -10) }},
		{"temperature hot", func() float64 { return s.TemperatureFactor(30, 50) }},
		{"moisture large deficit", func() float64 { s.CumEvapDeficit = 1e6; return s.MoistureFactor() }},
		{"moisture zero maximum", func() float64 { s.MaxCumulativeEvap = 0; return s.MoistureFactor() }},
		{"contact heavy load", s.ContactFactor},
		{"cn high ratio", func() float64 { return s.CNRatioFactor(s.Pools()[0]) }},
	}
	for _, c := range cases {
		v := c.f()
		if v < 0 || v > 1 {
			t.Errorf("%s: factor = %g, outside [0,1]", c.name, v)
		}
	}
}

func TestTemperatureFactor(t *testing.T) {
	s, _ := newTestModel(t)
	if v := s.TemperatureFactor(-5, 5); v != 0 {
		t.Errorf("freezing average: factor = %g, want 0", v)
	}
	// Average 10°C with a 20°C optimum gives (0.5)^2.
	if v := s.TemperatureFactor(5, 15); different(v, 0.25, testTolerance) {
		t.Errorf("factor = %g, want 0.25", v)
	}
	if v := s.TemperatureFactor(20, 20); v != 1 {
		t.Errorf("optimum: factor = %g, want 1", v)
	}
}

func TestMoistureFactor(t *testing.T) {
	s, _ := newTestModel(t)
	s.CumEvapDeficit = 0
	if v := s.MoistureFactor(); v != 1 {
		t.Errorf("zero deficit: factor = %g, want 1", v)
	}
	s.CumEvapDeficit = 10 // half of the 20 mm maximum
	if v := s.MoistureFactor(); different(v, 0.5, testTolerance) {
		t.Errorf("factor = %g, want 0.5", v)
	}
	s.CumEvapDeficit = 100
	if v := s.MoistureFactor(); v != 0 {
		t.Errorf("saturated deficit: factor = %g, want 0", v)
	}
}

func TestContactFactor(t *testing.T) {
	s, _ := newTestModel(t)
	if v := s.ContactFactor(); v != 1 {
		t.Errorf("no residue: factor = %g, want 1", v)
	}
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	if v := s.ContactFactor(); v != 1 {
		t.Errorf("below critical weight: factor = %g, want 1", v)
	}
	if err := s.Add(3000, 30, 3, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	if v := s.ContactFactor(); different(v, 0.5, testTolerance) {
		t.Errorf("4000 kg/ha lying: factor = %g, want 0.5", v)
	}
	// Manure doesn't contribute to soil contact, so adding it must not
	// change the factor.
	before := s.ContactFactor()
	if err := s.Add(5000, 50, 5, "manure", ""); err != nil {
		t.Fatal(err)
	}
	if after := s.ContactFactor(); different(before, after, testTolerance) {
		t.Errorf("non-contact residue changed factor from %g to %g", before, after)
	}
}

func TestCNRatioFactor(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	p := s.Pools()[0]

	// Zero threshold disables the limitation entirely.
	s.CNRatioThreshold = 0
	if v := s.CNRatioFactor(p); v != 1 {
		t.Errorf("zero threshold: factor = %g, want 1", v)
	}
	s.CNRatioThreshold = 25

	// C:N of 400:(10+0.018) is far above the threshold of 25, so the
	// factor must be well below 1.
	if v := s.CNRatioFactor(p); v >= 1 || v <= 0 {
		t.Errorf("high C:N ratio: factor = %g, want in (0,1)", v)
	}

	// Plenty of nitrogen keeps the factor at 1.
	if err := s.Add(0, 100, 0, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	if v := s.CNRatioFactor(p); v != 1 {
		t.Errorf("low C:N ratio: factor = %g, want 1", v)
	}
}

// The end-to-end scenario: add 1000 kg/ha of wheat residue and run one
// potential decomposition cycle with every environmental factor at 1.
func TestPotentialDecompositionScenario(t *testing.T) {
	s, m := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	p := s.Pools()[0]
	if different(p.Lying[Carbohydrate].Amount, 600, testTolerance) {
		t.Fatalf("carbohydrate amount = %g, want 600", p.Lying[Carbohydrate].Amount)
	}
	if different(p.Lying[Carbohydrate].C, 240, testTolerance) {
		t.Fatalf("carbohydrate C = %g, want 240", p.Lying[Carbohydrate].C)
	}

	s.CNRatioThreshold = 0 // force the C:N factor to 1
	totalLyingC := p.LyingC()
	if err := s.StepDay(calmDay); err != nil {
		t.Fatal(err)
	}
	if len(m.offers) != 1 {
		t.Fatalf("offers = %d, want 1", len(m.offers))
	}
	offer := m.offers[0].Pools[0]
	if different(offer.C, 0.1*totalLyingC, testTolerance) {
		t.Errorf("offered C = %g, want %g", offer.C, 0.1*totalLyingC)
	}
	if different(offer.Amount, offer.C/0.4, testTolerance) {
		t.Errorf("offered amount = %g, want %g", offer.Amount, offer.C/0.4)
	}
	if offer.AshAlkalinity != 0 {
		t.Errorf("offered ash alkalinity = %g, want 0", offer.AshAlkalinity)
	}
}

// A pool whose lying carbon has dropped below the critical minimum is
// offered in full regardless of the environmental factors.
func TestPotentialDecompositionCriticalMinimum(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(0.001, 0.0001, 0.00001, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	s.CumEvapDeficit = 1e6 // moisture factor 0
	s.weather = WeatherSnapshot{MinT: -10, MaxT: -10}
	pot := s.PotentialDecomposable()
	p := s.Pools()[0]
	if different(pot[0].C, p.LyingC(), testTolerance) {
		t.Errorf("potential C = %g, want full %g", pot[0].C, p.LyingC())
	}
}

// PotentialDecomposable must never mutate the store.
func TestPotentialDecompositionPure(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	before := *s.Pools()[0]
	s.weather = calmDay
	s.PotentialDecomposable()
	if *s.Pools()[0] != before {
		t.Error("potential calculation mutated pool state")
	}
}

// Applying zero decomposition must leave every pool field bit-identical.
func TestDecompZeroRoundTrip(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1234.5, 6.7, 0.89, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	p := s.Pools()[0]
	before := *p
	s.Decomp(p, 0, 0, 0)
	if *p != before {
		t.Errorf("zero decomposition changed pool state: before %+v, after %+v", before, *p)
	}
}

func TestDecomp(t *testing.T) {
	s, _ := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	p := s.Pools()[0]
	s.Decomp(p, 200, 5, 0.5) // half the C and N and P

	if different(p.LyingC(), 200, testTolerance) {
		t.Errorf("lying C = %g, want 200", p.LyingC())
	}
	// Dry mass follows the carbon depletion fraction.
	if different(p.LyingAmount(), 500, testTolerance) {
		t.Errorf("lying amount = %g, want 500", p.LyingAmount())
	}
	if different(p.LyingN(), 5, testTolerance) {
		t.Errorf("lying N = %g, want 5", p.LyingN())
	}
	if different(p.LyingP(), 0.5, testTolerance) {
		t.Errorf("lying P = %g, want 0.5", p.LyingP())
	}
}

func TestActualDecompositionValidation(t *testing.T) {
	for _, nutrient := range []string{"C", "N"} {
		s, m := newTestModel(t)
		if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
			t.Fatal(err)
		}
		m.respond = func(offer *DecompositionOffer) *DecompositionResponse {
			o := offer.Pools[0]
			a := PoolDecomposition{Name: o.Name, C: o.C, N: o.N}
			switch nutrient {
			case "C":
				a.C += 1
			case "N":
				a.N += 1
			}
			return &DecompositionResponse{Pools: []PoolDecomposition{a}}
		}
		err := s.StepDay(calmDay)
		var pv *ProtocolViolationError
		if !errors.As(err, &pv) {
			t.Fatalf("%s excess: err = %v, want ProtocolViolationError", nutrient, err)
		}
		if pv.Nutrient != nutrient {
			t.Errorf("violation nutrient = %q, want %q", pv.Nutrient, nutrient)
		}
	}
}

// Amounts within the tolerance must be accepted, not rejected.
func TestActualDecompositionTolerance(t *testing.T) {
	s, m := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	m.respond = func(offer *DecompositionOffer) *DecompositionResponse {
		o := offer.Pools[0]
		return &DecompositionResponse{Pools: []PoolDecomposition{{
			Name: o.Name, C: o.C + 0.5e-4, N: o.N + 0.5e-4,
		}}}
	}
	if err := s.StepDay(calmDay); err != nil {
		t.Fatalf("within-tolerance response rejected: %v", err)
	}
}

// Actual P is derived from actual C in proportion to the offered P:C
// ratio, so a nutrient model halving C halves the P removal too.
func TestActualDecompositionProportionalP(t *testing.T) {
	s, m := newTestModel(t)
	if err := s.Add(1000, 10, 1, "wheat", ""); err != nil {
		t.Fatal(err)
	}
	s.CNRatioThreshold = 0
	p := s.Pools()[0]
	p0 := p.LyingP()
	m.respond = func(offer *DecompositionOffer) *DecompositionResponse {
		o := offer.Pools[0]
		return &DecompositionResponse{Pools: []PoolDecomposition{{
			Name: o.Name, C: o.C / 2, N: o.N / 2,
		}}}
	}
	if err := s.StepDay(calmDay); err != nil {
		t.Fatal(err)
	}
	// Potential was 10% of the lying pool; half of that was taken.
	if different(p.LyingP(), p0*(1-0.05), testTolerance) {
		t.Errorf("lying P = %g, want %g", p.LyingP(), p0*(1-0.05))
	}
}

// Standing residue must never decompose.
func TestDecompositionLeavesStanding(t *testing.T) {
	s, _ := newTestModel(t)
	ic := InitialConditions([]InitialResidue{{
		Type: "wheat", Mass: 1000, StandingFraction: 0.5, CNRatio: 80,
	}})
	if err := ic(s); err != nil {
		t.Fatal(err)
	}
	p := s.Pools()[0]
	standingBefore := p.StandingC()
	if err := s.StepDay(calmDay); err != nil {
		t.Fatal(err)
	}
	if absDifferent(p.StandingC(), standingBefore, 0) {
		t.Errorf("standing C changed from %g to %g during decomposition", standingBefore, p.StandingC())
	}
	if p.LyingC() >= 200 {
		t.Errorf("lying C = %g: decomposition did not occur", p.LyingC())
	}
}
