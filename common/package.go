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

// Format identifies which container a Package is built into.
type Format string

const (
	// FormatIntune builds a .intunewin container.
	FormatIntune Format = "intune"
	// FormatMacOSPkg builds a flat macOS .pkg container.
	FormatMacOSPkg Format = "macos-pkg"
)

// Package is the fully-resolved description of one build: manifest fields
// merged with any CLI overrides, ready to hand to a Generator.
type Package struct {
	Identifier string
	Version    string
	Name       string
	Author     string
	Format     Format

	// SourceDir is the staging directory to package.
	SourceDir string
	// SetupFile is the Intune setup executable's name, relative to
	// SourceDir. Unused for FormatMacOSPkg.
	SetupFile string
	// ScriptsDir optionally names a folder holding preinstall/postinstall
	// scripts. Unused for FormatIntune.
	ScriptsDir string

	// OutputPath is where the built package is written; "-" means
	// stdout. Takes precedence over OutputDir when both are set.
	OutputPath string
	// OutputDir, if set and OutputPath is empty, is joined with the
	// generator's RecommendedFileName to produce the output path.
	OutputDir string

	Reproducible bool
	Force        bool
}
