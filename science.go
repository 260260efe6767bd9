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

import "math"

// TemperatureFactor returns the dimensionless temperature limitation on
// decomposition [0-1] for the given daily minimum and maximum air
// temperatures [°C]. Decomposition stops at or below freezing and
// approaches the potential rate quadratically toward the optimum.
func (s *SurfaceOM) TemperatureFactor(minT, maxT float64) float64 {
	avg := (minT + maxT) / 2
	if avg <= 0 {
		return 0
	}
	f := avg / s.OptimumDecompTemp
	return bound(f*f, 0, 1)
}

// MoistureFactor returns the dimensionless moisture limitation on
// decomposition [0-1]. The cumulative potential soil evaporation since
// the last significant rain is a proxy for residue dryness.
func (s *SurfaceOM) MoistureFactor() float64 {
	return bound(1-divide(s.CumEvapDeficit, s.MaxCumulativeEvap), 0, 1)
}

// ContactFactor returns the dimensionless soil contact limitation on
// decomposition [0-1]. Heavy lying residue loads shade themselves from
// the soil surface; only residue types that contribute to contact count
// toward the effective mass.
func (s *SurfaceOM) ContactFactor() float64 {
	var effectiveMass float64
	for _, p := range s.pools {
		effectiveMass += p.LyingAmount() * p.Constants.ContactContribution
	}
	if effectiveMass <= s.CriticalResidueWeight {
		return 1
	}
	return bound(divide(s.CriticalResidueWeight, effectiveMass), 0, 1)
}

// CNRatioFactor returns the dimensionless nitrogen limitation on the
// decomposition of pool p [0-1]. The carbon to nitrogen ratio of the
// lying material, counting mineral N in the denominator, retards
// decomposition exponentially above the threshold ratio.
func (s *SurfaceOM) CNRatioFactor(p *ResiduePool) float64 {
	if s.CNRatioThreshold == 0 || p == nil {
		return 1
	}
	cnRatio := divide(p.LyingC(), p.LyingN()+p.NO3+p.NH4)
	return bound(math.Exp(-s.CNRatioCoeff*(cnRatio-s.CNRatioThreshold)/s.CNRatioThreshold), 0, 1)
}

// PotentialDecomp holds the upper bound on today's decomposition of one
// residue pool.
type PotentialDecomp struct {
	C, N, P float64 // kg/ha
}

// PotentialDecomposable computes, without mutating any state, the upper
// bound on today's decomposable carbon, nitrogen, and phosphorus for
// every residue pool, in pool creation order. Decomposition draws only
// from the lying sub-pools. A pool whose lying carbon has fallen below
// the critical minimum decomposes completely, avoiding numerical
// instability at near-zero masses.
func (s *SurfaceOM) PotentialDecomposable() []PotentialDecomp {
	mf := s.MoistureFactor()
	tf := s.TemperatureFactor(s.weather.MinT, s.weather.MaxT)
	cf := s.ContactFactor()

	out := make([]PotentialDecomp, len(s.pools))
	for i, p := range s.pools {
		sumC := p.LyingC()
		var f float64
		if sumC < s.CriticalMinimumOrganicC {
			f = 1
		} else {
			f = p.PotentialDecompRate * mf * tf * s.CNRatioFactor(p) * cf
		}
		out[i] = PotentialDecomp{C: f * sumC, N: f * p.LyingN(), P: f * p.LyingP()}
	}
	return out
}

// PotentialDecomposition returns a function that runs the potential phase
// of the daily decomposition protocol: it computes the per-pool potential
// decomposition and publishes the offer payload for the nutrient model.
func PotentialDecomposition() DomainManipulator {
	return func(s *SurfaceOM) error {
		potential := s.PotentialDecomposable()
		offer := &DecompositionOffer{Pools: make([]PoolOffer, len(s.pools))}
		for i, p := range s.pools {
			pot := potential[i]
			offer.Pools[i] = PoolOffer{
				Name:   p.Name,
				Type:   p.Type,
				Amount: divide(pot.C, p.Constants.CarbonFraction),
				C:      pot.C,
				N:      pot.N,
				P:      pot.P,
			}
		}
		s.offer = offer
		return nil
	}
}

// ActualDecomposition returns a function that runs the actual phase of
// the daily decomposition protocol: it sends the published offer to the
// nutrient model, validates the response against the offer, and applies
// the agreed decomposition to the pools. A response exceeding the offer
// beyond the tolerance is a fatal ProtocolViolationError.
func ActualDecomposition() DomainManipulator {
	return func(s *SurfaceOM) error {
		if s.offer == nil || len(s.offer.Pools) == 0 || s.nutrient == nil {
			return nil
		}
		resp, err := s.nutrient.ComputeActualDecomposition(s.offer)
		if err != nil {
			return err
		}
		return s.applyDecomposition(s.offer, resp)
	}
}

// applyDecomposition validates the nutrient model's response against the
// day's offer and applies it pool by pool. Actual phosphorus is derived
// from actual carbon in proportion to the offered P:C ratio.
func (s *SurfaceOM) applyDecomposition(offer *DecompositionOffer, resp *DecompositionResponse) error {
	potential := make(map[string]PoolOffer, len(offer.Pools))
	for _, o := range offer.Pools {
		potential[o.Name] = o
	}
	for _, a := range resp.Pools {
		pot, ok := potential[a.Name]
		if !ok {
			return &InvalidRequestError{Name: a.Name}
		}
		if a.C > pot.C+s.DecompTolerance {
			return &ProtocolViolationError{Pool: a.Name, Nutrient: "C", Actual: a.C, Potential: pot.C}
		}
		if a.N < 0 || a.N > pot.N+s.DecompTolerance {
			return &ProtocolViolationError{Pool: a.Name, Nutrient: "N", Actual: a.N, Potential: pot.N}
		}
		actualP := a.C * divide(pot.P, pot.C)
		p, err := s.poolByName(a.Name)
		if err != nil {
			return err
		}
		s.Decomp(p, a.C, a.N, actualP)
	}
	return nil
}

// Decomp removes the given carbon, nitrogen, and phosphorus masses
// [kg/ha] from the lying sub-pools of p. Dry mass and carbon are reduced
// by the carbon depletion fraction, clamped to [0,1]; the nitrogen and
// phosphorus fractions scale only their own field and are deliberately
// not clamped, so an actual amount at the edge of the validation
// tolerance can drive a pool's N or P marginally negative. Clamping here
// would change the model's numerical behavior.
func (s *SurfaceOM) Decomp(p *ResiduePool, cDecomp, nDecomp, pDecomp float64) {
	fC := bound(divide(cDecomp, p.LyingC()), 0, 1)
	fN := divide(nDecomp, p.LyingN())
	fP := divide(pDecomp, p.LyingP())
	for i := range p.Lying {
		p.Lying[i].Amount *= 1 - fC
		p.Lying[i].C *= 1 - fC
		p.Lying[i].N *= 1 - fN
		p.Lying[i].P *= 1 - fP
	}
}
