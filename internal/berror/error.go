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

// Package berror defines the tagged-variant error type shared by every
// package builder, and the one-to-one mapping from error kind to process
// exit code.
package berror

import "fmt"

// Kind identifies the category of a build failure.
type Kind int

const (
	// KindInput covers missing/invalid source material: a missing source
	// folder, an empty source folder, a missing setup file, a missing or
	// empty scripts folder, or an invalid identifier/version string.
	KindInput Kind = iota
	// KindOutput covers failures writing the finished package.
	KindOutput
	// KindFormat covers malformed archives or XML documents, either on
	// read (unpacking) or on write (emitting).
	KindFormat
	// KindCrypto covers authenticated-encryption failures.
	KindCrypto
	// KindInternal covers I/O failures during staging or compression that
	// are not attributable to bad input.
	KindInternal
	// KindCancelled covers operator-initiated cancellation.
	KindCancelled
)

// Exit codes, per the CLI surface contract. Each BuildError kind maps to
// exactly one of these.
const (
	ExitSuccess            = 0
	ExitGeneral            = 1
	ExitInvalidArgs        = 2
	ExitEmptySource        = 3
	ExitSetupFileNotFound  = 4
	ExitOutputError        = 5
	ExitScriptsNotFound    = 6
	ExitCancelled          = 7
)

// reason distinguishes BuildErrors that share a Kind but map to different
// exit codes (KindInput covers both "empty source" and "setup file
// missing", which are exits 3 and 4 respectively).
type reason int

const (
	reasonGeneric reason = iota
	reasonEmptySource
	reasonSetupFileNotFound
	reasonScriptsNotFound
	reasonInvalidArgs
)

// BuildError is the concrete error type returned by every exported
// operation in this module. It wraps an underlying cause (if any) and
// carries enough structure for callers to recover the right exit code
// without string-matching on Error().
type BuildError struct {
	Kind   Kind
	reason reason
	Path   string
	Msg    string
	Cause  error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause.Error())
	}
	return msg
}

// Unwrap allows errors.Is/errors.As to see through to Cause.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code this error maps to, per the CLI
// surface's canonical exit code table.
func (e *BuildError) ExitCode() int {
	switch {
	case e.Kind == KindInput && e.reason == reasonEmptySource:
		return ExitEmptySource
	case e.Kind == KindInput && e.reason == reasonSetupFileNotFound:
		return ExitSetupFileNotFound
	case e.Kind == KindInput && e.reason == reasonScriptsNotFound:
		return ExitScriptsNotFound
	case e.Kind == KindInput && e.reason == reasonInvalidArgs:
		return ExitInvalidArgs
	case e.Kind == KindOutput:
		return ExitOutputError
	case e.Kind == KindCancelled:
		return ExitCancelled
	default:
		return ExitGeneral
	}
}

func newf(kind Kind, r reason, path, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: kind, reason: r, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// SourceFolderNotFound builds the input error for a missing or non-directory
// source folder.
func SourceFolderNotFound(path string) *BuildError {
	return newf(KindInput, reasonGeneric, path, "source folder not found")
}

// SourceFolderEmpty builds the input error for a source folder that
// contains no files to package.
func SourceFolderEmpty(path string) *BuildError {
	return newf(KindInput, reasonEmptySource, path, "source folder is empty")
}

// SetupFileNotFound builds the input error for a missing Intune setup file.
func SetupFileNotFound(path, folder string) *BuildError {
	return newf(KindInput, reasonSetupFileNotFound, path, "setup file not found in %s", folder)
}

// ScriptsFolderNotFound builds the input error for a missing macOS scripts
// folder.
func ScriptsFolderNotFound(path string) *BuildError {
	return newf(KindInput, reasonScriptsNotFound, path, "scripts folder not found")
}

// NoScriptsFound builds the input error for a scripts folder that contains
// neither a preinstall nor a postinstall file.
func NoScriptsFound(path string) *BuildError {
	return newf(KindInput, reasonScriptsNotFound, path, "scripts folder contains no preinstall or postinstall file")
}

// InvalidArgument builds the input error for a malformed identifier,
// version, or other CLI-supplied value.
func InvalidArgument(format string, args ...interface{}) *BuildError {
	return newf(KindInput, reasonInvalidArgs, "", format, args...)
}

// OutputDirCreationFailed wraps a failure to create the output directory.
func OutputDirCreationFailed(path string, cause error) *BuildError {
	e := newf(KindOutput, reasonGeneric, path, "cannot create output directory")
	e.Cause = cause
	return e
}

// OutputWriteFailed wraps a failure to write the finished package.
func OutputWriteFailed(path string, cause error) *BuildError {
	e := newf(KindOutput, reasonGeneric, path, "cannot write output file")
	e.Cause = cause
	return e
}

// OutputFileExists builds the output error for a non-overwrite collision.
func OutputFileExists(path string) *BuildError {
	return newf(KindOutput, reasonGeneric, path, "file already exists and has different contents; won't overwrite without --force")
}

// InvalidContainer builds a format error for a malformed .intunewin or .pkg
// container (bad ZIP/XAR, missing required entries).
func InvalidContainer(path, reason string) *BuildError {
	return newf(KindFormat, reasonGeneric, path, "invalid package container: %s", reason)
}

// XMLError wraps an XML emit/parse failure.
func XMLError(cause error) *BuildError {
	e := newf(KindFormat, reasonGeneric, "", "xml error")
	e.Cause = cause
	return e
}

// ErrDecryption is returned when the framed blob is too short or the
// ciphertext length is not a multiple of the AES block size.
func ErrDecryption(reason string) *BuildError {
	return newf(KindCrypto, reasonGeneric, "", "decryption error: %s", reason)
}

// ErrHMACVerificationFailed is returned when the recomputed HMAC does not
// match the one stored in the framed blob.
func ErrHMACVerificationFailed() *BuildError {
	return newf(KindCrypto, reasonGeneric, "", "HMAC verification failed")
}

// ErrInvalidPadding is returned when PKCS#7 unpadding fails.
func ErrInvalidPadding() *BuildError {
	return newf(KindCrypto, reasonGeneric, "", "invalid PKCS#7 padding")
}

// Internal wraps an I/O failure encountered during staging or compression.
func Internal(cause error) *BuildError {
	e := newf(KindInternal, reasonGeneric, "", "internal error")
	e.Cause = cause
	return e
}

// Cancelled builds the error returned when an interactive prompt or build
// context is cancelled by the operator.
func Cancelled() *BuildError {
	return newf(KindCancelled, reasonGeneric, "", "operation cancelled")
}
