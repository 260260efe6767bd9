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

// Mineral nutrient species names used in leachate events.
const (
	SpeciesNO3 = "no3"
	SpeciesNH4 = "nh4"
)

// NutrientModel is the interface to the external soil nutrient and solute
// model. It arbitrates how much of each day's potential decomposition
// actually occurs (for example, throttling decomposition when soil mineral
// nitrogen cannot immobilize the released carbon) and receives the
// nutrient mass that leaves the residue surface.
//
// Implementations only ever receive copies of pool state and must never
// retain references into the payloads across calls.
type NutrientModel interface {
	// ComputeActualDecomposition returns the actual decomposition for
	// today given the model's offer. The response may cover a subset of
	// the offered pools, and no returned amount may exceed the offered
	// potential by more than the decomposition tolerance.
	ComputeActualDecomposition(offer *DecompositionOffer) (*DecompositionResponse, error)

	// ReceiveIncorporationProfile accepts residue incorporated into the
	// soil by tillage, resolved by soil layer and material class.
	ReceiveIncorporationProfile(profile *IncorporationProfile) error

	// ReceiveLeachate accepts a mineral nutrient mass [kg/ha] of the
	// given species leached into the given soil layer.
	ReceiveLeachate(layer int, species string, amount float64) error
}

// PoolOffer is the potential decomposition of one residue pool.
type PoolOffer struct {
	Name string
	Type string

	Amount        float64 `desc:"Potentially decomposing dry mass" units:"kg/ha"`
	C             float64 `desc:"Potentially decomposing carbon" units:"kg/ha"`
	N             float64 `desc:"Potentially decomposing nitrogen" units:"kg/ha"`
	P             float64 `desc:"Potentially decomposing phosphorus" units:"kg/ha"`
	AshAlkalinity float64 `desc:"Ash alkalinity of decomposing matter; always zero" units:"mol/ha"`
}

// DecompositionOffer is the day's potential decomposition for every
// residue pool, published to the nutrient model.
type DecompositionOffer struct {
	Pools []PoolOffer
}

// PoolDecomposition is the actual decomposition of one residue pool as
// decided by the nutrient model, keyed by pool name.
type PoolDecomposition struct {
	Name    string
	C, N, P float64 // kg/ha
}

// DecompositionResponse is the nutrient model's actual-decomposition
// decision for the day.
type DecompositionResponse struct {
	Pools []PoolDecomposition
}

// ClassFlux is the organic nutrient mass of one material class moved into
// a soil layer by tillage.
type ClassFlux struct {
	C             float64 `units:"kg/ha"`
	N             float64 `units:"kg/ha"`
	P             float64 `units:"kg/ha"`
	AshAlkalinity float64 `units:"mol/ha"`
}

// LayerIncorporation is the residue mass incorporated into one soil layer.
type LayerIncorporation struct {
	Thickness float64 `desc:"Soil layer thickness" units:"mm"`

	NO3 float64 `desc:"Incorporated mineral nitrate" units:"kg/ha"`
	NH4 float64 `desc:"Incorporated mineral ammonium" units:"kg/ha"`
	PO4 float64 `desc:"Incorporated mineral phosphate" units:"kg/ha"`

	Classes [nClasses]ClassFlux
}

// IncorporationProfile is the depth-resolved residue mass moved into the
// soil by one tillage event, from the surface layer down to the deepest
// layer the implement reached.
type IncorporationProfile struct {
	Source string // tillage action name
	Layers []LayerIncorporation
}

// PassthroughNutrientModel is a NutrientModel that accepts every offer in
// full and discards leachate and incorporation events. It is used for
// standalone runs without a coupled soil model, and in tests.
type PassthroughNutrientModel struct{}

// ComputeActualDecomposition returns the offer unchanged.
func (PassthroughNutrientModel) ComputeActualDecomposition(offer *DecompositionOffer) (*DecompositionResponse, error) {
	resp := &DecompositionResponse{Pools: make([]PoolDecomposition, len(offer.Pools))}
	for i, o := range offer.Pools {
		resp.Pools[i] = PoolDecomposition{Name: o.Name, C: o.C, N: o.N, P: o.P}
	}
	return resp, nil
}

// ReceiveIncorporationProfile discards the profile.
func (PassthroughNutrientModel) ReceiveIncorporationProfile(*IncorporationProfile) error {
	return nil
}

// ReceiveLeachate discards the leachate.
func (PassthroughNutrientModel) ReceiveLeachate(int, string, float64) error {
	return nil
}
