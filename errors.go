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

import "fmt"

// ConfigurationError reports a residue type requested from the registry
// that has no description. It is fatal during initialization.
type ConfigurationError struct {
	Type string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resom: no residue type description for %q", e.Type)
}

// ProtocolViolationError reports an actual decomposition amount returned
// by the external nutrient model that exceeds the offered potential beyond
// the numerical tolerance. It is a contract violation by the nutrient
// model and terminates the simulation run; it is never retried.
type ProtocolViolationError struct {
	Pool      string
	Nutrient  string
	Actual    float64
	Potential float64
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("resom: actual %s decomposition %g for pool %q exceeds potential %g",
		e.Nutrient, e.Actual, e.Pool, e.Potential)
}

// InvalidRequestError reports a query for a residue pool that does not
// exist.
type InvalidRequestError struct {
	Name string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("resom: no residue pool named %q", e.Name)
}
