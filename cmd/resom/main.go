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

// Command resom is a command-line interface for the ResOM surface residue
// model.
package main

import (
	"fmt"
	"os"

	"github.com/soilmodel/resom/resomutil"
)

func main() {
	if err := resomutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
