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

import (
	"path/filepath"

	"github.com/holocm/holo-pkg/internal/buildlog"
)

// Build validates pkg against generator, builds it (preferring
// BuildInMemory, falling back to Build only if the generator opts out of
// in-memory building), and writes the result via WriteOutput.
func (pkg *Package) Build(generator Generator) (wasWritten bool, err error) {
	buildlog.Phase("validate", "package", pkg.Identifier)
	if errs := generator.Validate(pkg); len(errs) > 0 {
		buildlog.Error("validation failed", errs[0], "package", pkg.Identifier)
		return false, errs[0]
	}

	pkgBytes, err := generator.BuildInMemory(pkg, pkg.Reproducible)
	if err == UnsupportedBuildMethodError {
		pkgBytes, err = generator.Build(pkg, pkg.Reproducible)
	}
	if err != nil {
		buildlog.Error("build failed", err, "package", pkg.Identifier)
		return false, err
	}

	outputPath := pkg.OutputPath
	if outputPath == "" {
		name := generator.RecommendedFileName(pkg)
		if pkg.OutputDir != "" {
			outputPath = filepath.Join(pkg.OutputDir, name)
		} else {
			outputPath = name
		}
	}

	buildlog.Phase("write", "package", pkg.Identifier, "bytes", len(pkgBytes))
	wasWritten, err = WriteOutput(pkgBytes, outputPath, pkg.Force)
	if err != nil {
		buildlog.Error("write failed", err, "package", pkg.Identifier)
	}
	return wasWritten, err
}
