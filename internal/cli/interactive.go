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
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
	"github.com/holocm/holo-pkg/internal/intunepkg"
	"github.com/holocm/holo-pkg/internal/macospkg"
)

// isTerminal reports whether stdin is a terminal, as opposed to a pipe or
// redirected file; it gates whether prompts are meaningful at all.
func isTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// runInteractive drives a prompt-based build when holo-pkg is invoked
// with no subcommand. It is the "no flags, no manifest" entry point:
// scripting and automation should use the intune/macos subcommands
// directly.
func runInteractive() int {
	if !isTerminal() {
		fmt.Fprintln(os.Stderr, "no subcommand given and stdin is not a terminal; run 'holo-pkg --help'")
		return berror.ExitInvalidArgs
	}

	reader := bufio.NewReader(os.Stdin)

	format := prompt(reader, "Package format (intune/macos-pkg)")
	switch strings.ToLower(format) {
	case "intune":
		return interactiveIntune(reader)
	case "macos-pkg", "macos", "pkg":
		return interactiveMacos(reader)
	default:
		fmt.Fprintf(os.Stderr, "unrecognized format %q\n", format)
		return berror.ExitInvalidArgs
	}
}

func interactiveIntune(reader *bufio.Reader) int {
	pkg := &common.Package{
		Format:    common.FormatIntune,
		SourceDir: prompt(reader, "Source folder"),
		SetupFile: prompt(reader, "Setup file (relative to source folder)"),
	}
	pkg.OutputPath = prompt(reader, "Output path (blank for <setup file name>.intunewin)")

	reporter := NewReporter(false)
	globalReporter = reporter
	wasWritten, err := pkg.Build(intunepkg.Generator{})
	return finishInteractive(reporter, pkg, wasWritten, err)
}

func interactiveMacos(reader *bufio.Reader) int {
	pkg := &common.Package{
		Format:     common.FormatMacOSPkg,
		SourceDir:  prompt(reader, "Source folder"),
		Identifier: prompt(reader, "Identifier (e.g. com.example.app)"),
		Version:    prompt(reader, "Version (e.g. 1.0.0)"),
	}
	pkg.Name = prompt(reader, "Title (blank to use the identifier)")
	pkg.ScriptsDir = prompt(reader, "Scripts folder (blank for none)")
	pkg.OutputPath = prompt(reader, "Output path (blank for <identifier>-<version>.pkg)")

	reporter := NewReporter(false)
	globalReporter = reporter
	wasWritten, err := pkg.Build(macospkg.Generator{})
	return finishInteractive(reporter, pkg, wasWritten, err)
}

func finishInteractive(reporter *Reporter, pkg *common.Package, wasWritten bool, err error) int {
	if err != nil {
		reporter.PrintError("%v", err)
		if buildErr, ok := err.(*berror.BuildError); ok {
			return buildErr.ExitCode()
		}
		return berror.ExitGeneral
	}
	if wasWritten {
		reporter.PrintSuccess("wrote %s", outputDescription(pkg))
	} else {
		reporter.PrintSuccess("%s already up to date", outputDescription(pkg))
	}
	return berror.ExitSuccess
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
