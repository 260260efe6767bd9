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

// Cover returns the fraction of ground area covered by surface residue
// [0-1], for use by soil evaporation and light interception models.
// Per-residue covers are combined assuming the residues are spatially
// independent, so total cover is order-independent and non-decreasing in
// any pool's mass.
func (s *SurfaceOM) Cover() float64 {
	cover := 0.
	for _, p := range s.pools {
		cover = combineCover(cover, s.PoolCover(p))
	}
	return cover
}

// PoolCover returns the ground cover fraction [0-1] of a single residue
// pool. Lying and standing material each shade the ground following a
// Beer-law relationship in covered area, with standing area discounted by
// the standing extinction coefficient, and the two are combined assuming
// independence.
func (s *SurfaceOM) PoolCover(p *ResiduePool) float64 {
	areaLying := p.LyingAmount() * p.Constants.SpecificArea
	areaStanding := p.StandingAmount() * p.Constants.SpecificArea
	coverLying := 1 - math.Exp(-areaLying)
	coverStanding := 1 - math.Exp(-s.StandingExtinctionCoeff*areaStanding)
	return bound(combineCover(coverLying, coverStanding), 0, 1)
}

// combineCover combines two cover fractions assuming the covered areas
// overlap independently.
func combineCover(a, b float64) float64 {
	return 1 - (1-a)*(1-b)
}
