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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holocm/holo-pkg/internal/berror"
)

// version is set by main.go via SetVersion.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "holo-pkg",
	Short: "Build Intune .intunewin and macOS .pkg packages",
	Long: `holo-pkg builds deployable application packages from a staging
folder:

  - holo-pkg intune create wraps a folder into an encrypted .intunewin
    container with a Detection.xml manifest, for Microsoft Intune.
  - holo-pkg intune extract reverses that operation for inspection.
  - holo-pkg macos pkg builds a flat Apple installer package (.pkg)
    from a folder, with optional preinstall/postinstall scripts.

Invoked with no subcommand, it prompts interactively for the fields it
needs.`,
}

// SetVersion sets the version string cobra reports for --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the CLI, returning the process exit code.
func Execute() int {
	if len(os.Args) < 2 {
		return runInteractive()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
		}
		fmt.Fprintln(os.Stderr, "\ncancelling...")
		os.Exit(berror.ExitCancelled)
	}()

	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return berror.ExitSuccess
}

func exitCodeFor(err error) int {
	if buildErr, ok := err.(*berror.BuildError); ok {
		return buildErr.ExitCode()
	}
	return berror.ExitGeneral
}
