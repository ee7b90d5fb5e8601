/*******************************************************************************
*
* Copyright 2024 Holo contributors
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package common

// Generator is the interface every package target (Intune, macOS pkg)
// implements. Both of this module's generators build entirely from bytes
// already read into memory, so in practice only BuildInMemory is ever
// exercised; Build exists so the interface generalizes the same way the
// multi-format original does, and returns UnsupportedBuildMethodError.
type Generator interface {
	// Validate checks that pkg carries the fields this format needs.
	// Package.Build calls it before building; whether the source folder
	// exists is checked later, by the build itself. An empty slice means
	// the package is valid.
	Validate(pkg *Package) []error
	// Build is the fallback that Package.Build calls when BuildInMemory
	// returns UnsupportedBuildMethodError. Neither generator in this
	// module uses it, so both return UnsupportedBuildMethodError.
	Build(pkg *Package, buildReproducibly bool) ([]byte, error)
	// BuildInMemory produces the final package using only pkg's fields,
	// without touching the filesystem beyond reading the source folder.
	BuildInMemory(pkg *Package, buildReproducibly bool) ([]byte, error)
	// RecommendedFileName returns the file name (not a path) a built
	// package should be written to when the caller didn't specify one.
	RecommendedFileName(pkg *Package) string
}

type unsupportedBuildMethodError struct{}

// UnsupportedBuildMethodError is returned by Generator.Build or
// Generator.BuildInMemory when the other build method must be used
// instead.
var UnsupportedBuildMethodError = &unsupportedBuildMethodError{}

func (e *unsupportedBuildMethodError) Error() string {
	return "UnsupportedBuildMethodError"
}
