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
	"os"

	"github.com/spf13/cobra"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
	"github.com/holocm/holo-pkg/internal/macospkg"
	"github.com/holocm/holo-pkg/internal/manifest"
)

var macosCmd = &cobra.Command{
	Use:   "macos",
	Short: "Build flat macOS installer packages",
}

func init() {
	macosCmd.SilenceErrors = true
	macosCmd.SilenceUsage = true
	rootCmd.AddCommand(macosCmd)
	macosCmd.AddCommand(macosPkgCmd)
}

var (
	macosPkgManifest   string
	macosPkgSource     string
	macosPkgScripts    string
	macosPkgIdentifier string
	macosPkgVersion    string
	macosPkgTitle      string
	macosPkgOutput     string
	macosPkgForce      bool
	macosPkgQuiet      bool
)

var macosPkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "Package a staging folder into a flat .pkg installer",
	RunE:  runMacosPkg,
}

func init() {
	macosPkgCmd.Flags().StringVar(&macosPkgManifest, "manifest", "", "holo-pkg.toml manifest (overrides --source/--scripts/--identifier/--pkg-version/--title when given)")
	macosPkgCmd.Flags().StringVar(&macosPkgSource, "source", "", "staging folder to package")
	macosPkgCmd.Flags().StringVar(&macosPkgScripts, "scripts", "", "folder holding preinstall/postinstall scripts (optional)")
	macosPkgCmd.Flags().StringVar(&macosPkgIdentifier, "identifier", "", "package identifier, e.g. com.example.app")
	macosPkgCmd.Flags().StringVar(&macosPkgVersion, "pkg-version", "", "package version, e.g. 1.0.0")
	macosPkgCmd.Flags().StringVar(&macosPkgTitle, "title", "", "installer display title (defaults to the identifier)")
	macosPkgCmd.Flags().StringVarP(&macosPkgOutput, "output", "o", "", "output .pkg path, or - for stdout")
	macosPkgCmd.Flags().BoolVarP(&macosPkgForce, "force", "f", false, "overwrite an existing output file unconditionally")
	macosPkgCmd.Flags().BoolVarP(&macosPkgQuiet, "quiet", "q", false, "suppress phase output")
}

func runMacosPkg(cmd *cobra.Command, args []string) error {
	pkg, err := resolveMacosPackage()
	if err != nil {
		return err
	}

	reporter := NewReporter(macosPkgQuiet)
	globalReporter = reporter
	reporter.PrintPhase("packaging %s", pkg.SourceDir)

	wasWritten, err := pkg.Build(macospkg.Generator{})
	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}
	if wasWritten {
		reporter.PrintSuccess("wrote %s", outputDescription(pkg))
	} else {
		reporter.PrintSuccess("%s already up to date", outputDescription(pkg))
	}
	return nil
}

func resolveMacosPackage() (*common.Package, error) {
	if macosPkgManifest != "" {
		f, err := os.Open(macosPkgManifest)
		if err != nil {
			return nil, berror.InvalidArgument("cannot open manifest: %s", err.Error())
		}
		defer f.Close()
		pkg, err := manifest.Parse(f, dirOf(macosPkgManifest))
		if err != nil {
			return nil, err
		}
		if macosPkgOutput != "" {
			pkg.OutputPath = macosPkgOutput
		}
		if macosPkgForce {
			pkg.Force = true
		}
		return pkg, nil
	}

	return &common.Package{
		Format:     common.FormatMacOSPkg,
		Identifier: macosPkgIdentifier,
		Version:    macosPkgVersion,
		Name:       macosPkgTitle,
		SourceDir:  macosPkgSource,
		ScriptsDir: macosPkgScripts,
		OutputPath: macosPkgOutput,
		Force:      macosPkgForce,
	}, nil
}
