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

package cli

import (
	"path/filepath"

	"github.com/holocm/holo-pkg/common"
)

// dirOf returns the directory a manifest file lives in, for resolving
// paths the manifest declares relative to itself.
func dirOf(manifestPath string) string {
	return filepath.Dir(manifestPath)
}

// outputDescription names the destination a build result was (or would
// have been) written to, for reporter messages.
func outputDescription(pkg *common.Package) string {
	if pkg.OutputPath != "" {
		return pkg.OutputPath
	}
	if pkg.OutputDir != "" {
		return pkg.OutputDir
	}
	return "output"
}
