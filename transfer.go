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

// Add places fresh residue of the given organic matter type on the soil
// surface: mass is dry matter [kg/ha], n and p are its organic nitrogen
// and phosphorus content [kg/ha]. The pool is created on first use; an
// empty name defaults to the type name. Mineral nutrients are derived
// from the type's ppm constants, and all added material enters the lying
// sub-pools, distributed over the material classes by the type's
// partition fractions.
func (s *SurfaceOM) Add(mass, n, p float64, omType, name string) error {
	pool, err := s.pool(name, omType)
	if err != nil {
		return err
	}
	cst := pool.Constants

	// ppm of added dry mass to kg/ha.
	pool.NO3 += mass * cst.NO3Ppm / 1e6
	pool.NH4 += mass * cst.NH4Ppm / 1e6
	pool.PO4 += mass * cst.PO4Ppm / 1e6

	c := mass * cst.CarbonFraction
	for i := 0; i < nClasses; i++ {
		pool.Lying[i].Amount += mass * cst.FractionC[i]
		pool.Lying[i].C += c * cst.FractionC[i]
		pool.Lying[i].N += n * cst.FractionN[i]
		pool.Lying[i].P += p * cst.FractionP[i]
	}
	return nil
}

// FaecesData describes organic matter deposited by grazing animals.
type FaecesData struct {
	OMWeight float64 `desc:"Faecal organic matter dry mass" units:"kg/ha"`
	OMN      float64 `desc:"Faecal organic nitrogen" units:"kg/ha"`
	OMP      float64 `desc:"Faecal organic phosphorus" units:"kg/ha"`
}

// AddFaeces adds deposited faeces to the manure residue pool. Only the
// configured fraction of the deposited organic matter remains on the
// surface.
func (s *SurfaceOM) AddFaeces(data FaecesData) error {
	f := s.FaecesFraction
	return s.Add(data.OMWeight*f, data.OMN*f, data.OMP*f, "manure", "manure")
}

// Leach moves mineral nutrients out of the surface residue in proportion
// to today's rainfall [mm]. The leached nitrogen species are forwarded to
// the top soil layer of the nutrient model; the leached phosphate mass is
// computed and removed from the pools but, matching the model's
// long-standing nutrient contract, not forwarded.
func (s *SurfaceOM) Leach(rain float64) error {
	f := bound(divide(rain, s.TotalLeachRain), 0, 1)
	if f == 0 {
		return nil
	}
	var no3, nh4, po4 float64
	for _, p := range s.pools {
		no3 += p.NO3 * f
		nh4 += p.NH4 * f
		po4 += p.PO4 * f
	}
	_ = po4
	if s.nutrient != nil {
		if err := s.nutrient.ReceiveLeachate(0, SpeciesNO3, no3); err != nil {
			return err
		}
		if err := s.nutrient.ReceiveLeachate(0, SpeciesNH4, nh4); err != nil {
			return err
		}
	}
	for _, p := range s.pools {
		p.NO3 *= 1 - f
		p.NH4 *= 1 - f
		p.PO4 *= 1 - f
	}
	return nil
}

// Incorporate buries the given fraction of all surface residue down to
// tillageDepth [mm]. The buried mass is distributed over the soil layers
// in proportion to the depth of each layer within the tilled zone and
// reported to the nutrient model as a depth-resolved profile; the
// remaining surface pools, standing and lying alike, are scaled down
// uniformly by the incorporated fraction. The per-layer split only
// affects what is reported downstream, never what remains on the surface.
func (s *SurfaceOM) Incorporate(actionType string, fIncorp, tillageDepth float64) error {
	fIncorp = bound(fIncorp, 0, 1)

	profile := &IncorporationProfile{Source: actionType}
	var cMoved float64
	remaining := tillageDepth
	for _, dz := range s.layers {
		if remaining <= 0 {
			break
		}
		lf := divide(math.Min(remaining, dz), tillageDepth)
		layer := LayerIncorporation{Thickness: dz}
		for _, p := range s.pools {
			layer.NO3 += p.NO3 * fIncorp * lf
			layer.NH4 += p.NH4 * fIncorp * lf
			layer.PO4 += p.PO4 * fIncorp * lf
			for i := 0; i < nClasses; i++ {
				c := (p.Standing[i].C + p.Lying[i].C) * fIncorp * lf
				layer.Classes[i].C += c
				layer.Classes[i].N += (p.Standing[i].N + p.Lying[i].N) * fIncorp * lf
				layer.Classes[i].P += (p.Standing[i].P + p.Lying[i].P) * fIncorp * lf
				cMoved += c
			}
		}
		profile.Layers = append(profile.Layers, layer)
		remaining -= dz
	}

	if cMoved > 0 && s.nutrient != nil {
		if err := s.nutrient.ReceiveIncorporationProfile(profile); err != nil {
			return err
		}
	}

	keep := 1 - fIncorp
	for _, p := range s.pools {
		for i := 0; i < nClasses; i++ {
			scaleFraction(&p.Standing[i], keep)
			scaleFraction(&p.Lying[i], keep)
		}
		p.NO3 *= keep
		p.NH4 *= keep
		p.PO4 *= keep
	}
	return nil
}

// RemoveFraction removes the given fraction of the named pool's standing
// and lying material and mineral nutrients from the simulation, as for a
// harvest or burning event. The removed mass leaves the system entirely.
func (s *SurfaceOM) RemoveFraction(name string, f float64) error {
	p, err := s.poolByName(name)
	if err != nil {
		return err
	}
	keep := 1 - bound(f, 0, 1)
	for i := 0; i < nClasses; i++ {
		scaleFraction(&p.Standing[i], keep)
		scaleFraction(&p.Lying[i], keep)
	}
	p.NO3 *= keep
	p.NH4 *= keep
	p.PO4 *= keep
	return nil
}

func scaleFraction(om *OMFraction, f float64) {
	om.Amount *= f
	om.C *= f
	om.N *= f
	om.P *= f
}
