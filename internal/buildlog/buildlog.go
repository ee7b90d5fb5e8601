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

// Package buildlog configures the process-wide structured logger used to
// report build phases (validate, scan, encrypt, assemble, write) to stderr.
package buildlog

import (
	"log/slog"
	"os"
)

// Options controls how the default logger is configured.
type Options struct {
	Verbose bool
	// Format is "text" or "json".
	Format string
}

// Configure installs a slog default logger writing to stderr, text or JSON
// formatted, at Info level unless Verbose requests Debug.
func Configure(opts Options) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// Phase logs the start of one build phase (e.g. "scan", "encrypt",
// "assemble", "write") with structured fields describing its scope.
func Phase(name string, args ...any) {
	slog.Info("build phase", append([]any{"phase", name}, args...)...)
}

// Error logs a build failure with structured fields.
func Error(msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
}
