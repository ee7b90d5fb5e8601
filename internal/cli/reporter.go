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

// Package cli wires the package builders to spf13/cobra subcommands, an
// interactive prompt flow for bare invocations, and a reporter for
// terminal progress/result messages.
package cli

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Reporter prints build phase and outcome messages to stderr. Unlike a
// progress bar, builds here are fast and single-threaded, so it only
// needs to report phase transitions and the final result.
type Reporter struct {
	quiet     bool
	cancelled atomic.Bool
}

// NewReporter creates a CLI reporter. If quiet is true, only errors are
// printed.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// PrintPhase announces the start of a build phase.
func (r *Reporter) PrintPhase(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// PrintError prints an error message with the teacher's bold red "!!"
// marker.
func (r *Reporter) PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m "+format+"\n", args...)
}

// PrintSuccess prints a success message.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// IsCancelled reports whether Cancel has been called.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled, for the SIGINT handler in
// Execute.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

var globalReporter *Reporter
