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

// Package resom simulates the daily carbon, nitrogen, and phosphorus mass
// balance of crop residue and other organic matter lying on and standing
// above the soil surface, including its decomposition into the soil
// nutrient pool and its redistribution into soil layers during tillage.
package resom

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Version gives the version number.
const Version = "1.1.0"

// Material classes of surface organic matter. Each residue pool tracks
// its mass in three classes with independent C, N, and P partitioning.
const (
	Carbohydrate = iota
	Cellulose
	Lignin
	nClasses
)

// OMFraction is the state of one material class within a residue pool.
// All fields are masses per unit ground area and must remain non-negative,
// with Amount >= C.
type OMFraction struct {
	Amount float64 `desc:"Organic matter dry mass" units:"kg/ha"`
	C      float64 `desc:"Organic matter carbon" units:"kg/ha"`
	N      float64 `desc:"Organic matter nitrogen" units:"kg/ha"`
	P      float64 `desc:"Organic matter phosphorus" units:"kg/ha"`
}

// ResiduePool holds the state of the surface residue of a single type,
// for example wheat straw or manure. Standing material is attached residue
// held above the surface; lying material is in contact with the soil.
// Only lying material decomposes or leaches.
type ResiduePool struct {
	Name string `desc:"Pool identifier, unique within a simulation"`
	Type string `desc:"Organic matter type name in the residue type registry"`

	PotentialDecompRate float64 `desc:"Fraction of the pool that can decompose per day under optimal conditions" units:"1/day"`

	NO3 float64 `desc:"Mineral nitrate content" units:"kg/ha"`
	NH4 float64 `desc:"Mineral ammonium content" units:"kg/ha"`
	PO4 float64 `desc:"Mineral phosphate content" units:"kg/ha"`

	Standing [nClasses]OMFraction
	Lying    [nClasses]OMFraction

	// Constants holds the immutable parameters of this pool's
	// organic matter type.
	Constants *ResidueTypeConstants
}

// LyingAmount returns the total lying dry mass [kg/ha] summed over
// material classes.
func (p *ResiduePool) LyingAmount() float64 {
	return p.Lying[Carbohydrate].Amount + p.Lying[Cellulose].Amount + p.Lying[Lignin].Amount
}

// LyingC returns the total lying carbon [kg/ha].
func (p *ResiduePool) LyingC() float64 {
	return p.Lying[Carbohydrate].C + p.Lying[Cellulose].C + p.Lying[Lignin].C
}

// LyingN returns the total lying organic nitrogen [kg/ha].
func (p *ResiduePool) LyingN() float64 {
	return p.Lying[Carbohydrate].N + p.Lying[Cellulose].N + p.Lying[Lignin].N
}

// LyingP returns the total lying organic phosphorus [kg/ha].
func (p *ResiduePool) LyingP() float64 {
	return p.Lying[Carbohydrate].P + p.Lying[Cellulose].P + p.Lying[Lignin].P
}

// StandingAmount returns the total standing dry mass [kg/ha].
func (p *ResiduePool) StandingAmount() float64 {
	return p.Standing[Carbohydrate].Amount + p.Standing[Cellulose].Amount + p.Standing[Lignin].Amount
}

// StandingC returns the total standing carbon [kg/ha].
func (p *ResiduePool) StandingC() float64 {
	return p.Standing[Carbohydrate].C + p.Standing[Cellulose].C + p.Standing[Lignin].C
}

// StandingN returns the total standing organic nitrogen [kg/ha].
func (p *ResiduePool) StandingN() float64 {
	return p.Standing[Carbohydrate].N + p.Standing[Cellulose].N + p.Standing[Lignin].N
}

// StandingP returns the total standing organic phosphorus [kg/ha].
func (p *ResiduePool) StandingP() float64 {
	return p.Standing[Carbohydrate].P + p.Standing[Cellulose].P + p.Standing[Lignin].P
}

// SurfaceOM holds the state of the surface organic matter model and owns
// all residue pool state. It is meant to be driven by a host simulation
// that supplies daily weather and a NutrientModel collaborator; all
// operations are synchronous and single-threaded.
type SurfaceOM struct {
	// InitFuncs are run by Init before the first simulated day, for
	// example to load initial residue pools.
	InitFuncs []DomainManipulator

	// DayFuncs are run in order by StepDay, once per simulated day.
	DayFuncs []DomainManipulator

	pools []*ResiduePool
	index map[string]int // pool name to index in pools

	registry *TypeRegistry
	nutrient NutrientModel
	layers   []float64 // soil layer thicknesses from the surface down [mm]

	CumEvapDeficit    float64 `desc:"Cumulative potential soil evaporation since the last significant rain" units:"mm"`
	PendingIrrigation float64 `desc:"Irrigation applied today; consumed by the moisture deficit update" units:"mm"`

	// Day is the number of completed daily cycles since the last Reset.
	Day int

	weather WeatherSnapshot
	offer   *DecompositionOffer // published during the potential phase, valid for one day

	// Model parameters. NewSurfaceOM fills these with the standard
	// defaults; hosts may override them before Init.
	OptimumDecompTemp       float64 `desc:"Air temperature at which decomposition proceeds at the potential rate" units:"°C"`
	MaxCumulativeEvap       float64 `desc:"Cumulative soil evaporation at which the moisture factor reaches zero" units:"mm"`
	CNRatioCoeff            float64 `desc:"Decay coefficient of the C:N ratio factor"`
	CNRatioThreshold        float64 `desc:"C:N ratio above which decomposition is retarded"`
	CriticalResidueWeight   float64 `desc:"Lying residue mass above which soil contact limits decomposition" units:"kg/ha"`
	CriticalMinimumOrganicC float64 `desc:"Lying carbon below which a pool decomposes completely" units:"kg/ha"`
	TotalLeachRain          float64 `desc:"Rainfall that leaches all mineral nutrients from residue" units:"mm"`
	MinRainToLeach          float64 `desc:"Minimum daily rainfall for leaching to occur" units:"mm"`
	ResetDeficitRain        float64 `desc:"Daily precipitation above which the evaporation deficit is reset" units:"mm"`
	StandingExtinctionCoeff float64 `desc:"Light extinction coefficient of standing residue area"`
	FaecesFraction          float64 `desc:"Fraction of added faeces organic matter retained on the surface"`
	DefaultCPRatio          float64 `desc:"C:P ratio assumed for initial residue when none is given"`
	DecompTolerance         float64 `desc:"Numerical tolerance for actual vs. potential decomposition"`
}

// NewSurfaceOM creates a new surface organic matter model using the given
// residue type registry, soil layer thicknesses [mm] from the surface down,
// and external nutrient model. The returned model has the standard parameter
// set and the standard daily cycle: moisture deficit update, leaching,
// potential decomposition, then actual decomposition.
func NewSurfaceOM(registry *TypeRegistry, layers []float64, nutrient NutrientModel) *SurfaceOM {
	s := &SurfaceOM{
		index:    make(map[string]int),
		registry: registry,
		nutrient: nutrient,
		layers:   append([]float64(nil), layers...),

		OptimumDecompTemp:       20,
		MaxCumulativeEvap:       20,
		CNRatioCoeff:            0.277,
		CNRatioThreshold:        25,
		CriticalResidueWeight:   2000,
		CriticalMinimumOrganicC: 0.004,
		TotalLeachRain:          25,
		MinRainToLeach:          10,
		ResetDeficitRain:        4,
		StandingExtinctionCoeff: 0.5,
		FaecesFraction:          0.5,
		DefaultCPRatio:          100,
		DecompTolerance:         1e-4,
	}
	s.DayFuncs = []DomainManipulator{
		UpdateMoistureDeficit(),
		Leaching(),
		PotentialDecomposition(),
		ActualDecomposition(),
	}
	return s
}

// Pools returns the residue pools in creation order. The returned slice
// must not be mutated.
func (s *SurfaceOM) Pools() []*ResiduePool {
	return s.pools
}

// Reset removes all residue pools and zeroes the engine state, as at a
// simulation start or restart event.
func (s *SurfaceOM) Reset() {
	s.pools = nil
	s.index = make(map[string]int)
	s.CumEvapDeficit = 0
	s.PendingIrrigation = 0
	s.Day = 0
	s.offer = nil
}

// pool returns the pool with the given name, creating it if it does not
// exist using the constants registered for the given organic matter type.
// An empty name defaults to the type name. Pools are never removed once
// created; mass may decay toward zero but the entry persists.
func (s *SurfaceOM) pool(name, omType string) (*ResiduePool, error) {
	if name == "" {
		name = omType
	}
	if i, ok := s.index[name]; ok {
		return s.pools[i], nil
	}
	cst, err := s.registry.Constants(omType)
	if err != nil {
		return nil, err
	}
	p := &ResiduePool{
		Name:                name,
		Type:                omType,
		PotentialDecompRate: cst.PotentialDecompRate,
		Constants:           cst,
	}
	s.index[name] = len(s.pools)
	s.pools = append(s.pools, p)
	return p, nil
}

// poolByName returns an existing pool, or an InvalidRequestError if no
// pool with that name has been created.
func (s *SurfaceOM) poolByName(name string) (*ResiduePool, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, &InvalidRequestError{Name: name}
	}
	return s.pools[i], nil
}

// Weight returns the total surface dry mass [kg/ha] of the named pool.
func (s *SurfaceOM) Weight(name string) (float64, error) {
	p, err := s.poolByName(name)
	if err != nil {
		return 0, err
	}
	return p.StandingAmount() + p.LyingAmount(), nil
}

// Irrigate records irrigation [mm] applied today. The amount is consumed
// by the next daily moisture deficit update and then discarded.
func (s *SurfaceOM) Irrigate(amount float64) {
	s.PendingIrrigation += amount
}

// sumPools sums f over all pools.
func (s *SurfaceOM) sumPools(f func(p *ResiduePool) float64) float64 {
	v := make([]float64, len(s.pools))
	for i, p := range s.pools {
		v[i] = f(p)
	}
	return floats.Sum(v)
}

// TotalAmount returns the total surface residue dry mass [kg/ha].
func (s *SurfaceOM) TotalAmount() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.StandingAmount() + p.LyingAmount() })
}

// TotalC returns the total surface residue carbon [kg/ha].
func (s *SurfaceOM) TotalC() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.StandingC() + p.LyingC() })
}

// TotalN returns the total surface residue organic nitrogen [kg/ha].
func (s *SurfaceOM) TotalN() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.StandingN() + p.LyingN() })
}

// TotalP returns the total surface residue organic phosphorus [kg/ha].
func (s *SurfaceOM) TotalP() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.StandingP() + p.LyingP() })
}

// LyingAmount returns the total lying residue dry mass [kg/ha].
func (s *SurfaceOM) LyingAmount() float64 {
	return s.sumPools((*ResiduePool).LyingAmount)
}

// StandingAmount returns the total standing residue dry mass [kg/ha].
func (s *SurfaceOM) StandingAmount() float64 {
	return s.sumPools((*ResiduePool).StandingAmount)
}

// MineralN returns the total mineral nitrogen (nitrate plus ammonium)
// held in surface residue [kg/ha].
func (s *SurfaceOM) MineralN() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.NO3 + p.NH4 })
}

// MineralP returns the total mineral phosphate held in surface
// residue [kg/ha].
func (s *SurfaceOM) MineralP() float64 {
	return s.sumPools(func(p *ResiduePool) float64 { return p.PO4 })
}

// bound restricts v to the interval [lo, hi].
func bound(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// divide returns num/den, degrading to zero rather than raising a numeric
// fault when the denominator is zero.
func divide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func (s *SurfaceOM) String() string {
	return fmt.Sprintf("resom: %d pools, %.0f kg/ha surface residue, day %d",
		len(s.pools), s.TotalAmount(), s.Day)
}
