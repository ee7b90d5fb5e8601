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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
	"github.com/holocm/holo-pkg/internal/intunepkg"
	"github.com/holocm/holo-pkg/internal/manifest"
)

var intuneCmd = &cobra.Command{
	Use:   "intune",
	Short: "Build or extract .intunewin containers",
}

func init() {
	intuneCmd.SilenceErrors = true
	intuneCmd.SilenceUsage = true
	rootCmd.AddCommand(intuneCmd)
	intuneCmd.AddCommand(intuneCreateCmd)
	intuneCmd.AddCommand(intuneExtractCmd)
}

var (
	intuneCreateManifest string
	intuneCreateSource   string
	intuneCreateSetup    string
	intuneCreateOutput   string
	intuneCreateForce    bool
	intuneCreateQuiet    bool
)

var intuneCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Package a staging folder into a .intunewin container",
	RunE:  runIntuneCreate,
}

func init() {
	intuneCreateCmd.Flags().StringVar(&intuneCreateManifest, "manifest", "", "holo-pkg.toml manifest (overrides --source/--setup-file when given)")
	intuneCreateCmd.Flags().StringVar(&intuneCreateSource, "source", "", "staging folder to package")
	intuneCreateCmd.Flags().StringVar(&intuneCreateSetup, "setup-file", "", "setup executable's name, relative to --source")
	intuneCreateCmd.Flags().StringVarP(&intuneCreateOutput, "output", "o", "", "output .intunewin path, or - for stdout")
	intuneCreateCmd.Flags().BoolVarP(&intuneCreateForce, "force", "f", false, "overwrite an existing output file unconditionally")
	intuneCreateCmd.Flags().BoolVarP(&intuneCreateQuiet, "quiet", "q", false, "suppress phase output")
}

func runIntuneCreate(cmd *cobra.Command, args []string) error {
	pkg, err := resolveIntunePackage()
	if err != nil {
		return err
	}

	reporter := NewReporter(intuneCreateQuiet)
	globalReporter = reporter
	reporter.PrintPhase("packaging %s", pkg.SourceDir)

	wasWritten, err := pkg.Build(intunepkg.Generator{})
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

func resolveIntunePackage() (*common.Package, error) {
	if intuneCreateManifest != "" {
		f, err := os.Open(intuneCreateManifest)
		if err != nil {
			return nil, berror.InvalidArgument("cannot open manifest: %s", err.Error())
		}
		defer f.Close()
		pkg, err := manifest.Parse(f, dirOf(intuneCreateManifest))
		if err != nil {
			return nil, err
		}
		if intuneCreateOutput != "" {
			pkg.OutputPath = intuneCreateOutput
		}
		if intuneCreateForce {
			pkg.Force = true
		}
		return pkg, nil
	}

	return &common.Package{
		Format:     common.FormatIntune,
		SourceDir:  intuneCreateSource,
		SetupFile:  intuneCreateSetup,
		OutputPath: intuneCreateOutput,
		Force:      intuneCreateForce,
	}, nil
}

var (
	intuneExtractOutput string
)

var intuneExtractCmd = &cobra.Command{
	Use:   "extract <container>",
	Short: "Unpack a .intunewin container for inspection",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntuneExtract,
}

func init() {
	intuneExtractCmd.Flags().StringVarP(&intuneExtractOutput, "output", "o", ".", "folder to write extracted files into")
}

func runIntuneExtract(cmd *cobra.Command, args []string) error {
	containerBytes, err := os.ReadFile(args[0])
	if err != nil {
		return berror.InvalidContainer(args[0], err.Error())
	}

	result, err := intunepkg.Unpack(containerBytes, intuneExtractOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "extracted to %s (setup file: %s)\n", intuneExtractOutput, result.SetupFile)
	return nil
}
