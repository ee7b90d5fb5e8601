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

// Package manifest parses holo-pkg.toml, the package manifest format that
// supplies build parameters in place of (or as defaults for) CLI flags.
package manifest

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
)

// packageSection only needs a nice exported name for the TOML parser to
// produce more meaningful error messages on malformed input data.
type packageSection struct {
	Identifier string
	Version    string
	Name       string
	Author     string
	Format     string
}

// sourceSection only needs a nice exported name for the TOML parser to
// produce more meaningful error messages on malformed input data.
type sourceSection struct {
	Directory string
	SetupFile string
	Scripts   string
}

// outputSection only needs a nice exported name for the TOML parser to
// produce more meaningful error messages on malformed input data.
type outputSection struct {
	Directory    string
	Reproducible bool
	Force        bool
}

// document is the top-level shape of holo-pkg.toml.
type document struct {
	Package packageSection
	Source  sourceSection
	Output  outputSection
}

// Parse reads a holo-pkg.toml document from r and turns it into a
// common.Package. baseDirectory, if non-empty, is prepended to relative
// source/output paths that the manifest declares.
func Parse(r io.Reader, baseDirectory string) (*common.Package, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, berror.Internal(err)
	}

	var doc document
	if _, err := toml.Decode(string(blob), &doc); err != nil {
		return nil, berror.InvalidArgument("cannot parse manifest: %s", err.Error())
	}

	format := common.Format(strings.TrimSpace(doc.Package.Format))
	if format != common.FormatIntune && format != common.FormatMacOSPkg {
		return nil, berror.InvalidArgument("package.format must be %q or %q, found %q",
			common.FormatIntune, common.FormatMacOSPkg, doc.Package.Format)
	}

	pkg := &common.Package{
		Identifier:   strings.TrimSpace(doc.Package.Identifier),
		Version:      strings.TrimSpace(doc.Package.Version),
		Name:         strings.TrimSpace(doc.Package.Name),
		Author:       strings.TrimSpace(doc.Package.Author),
		Format:       format,
		SourceDir:    joinIfRelative(baseDirectory, doc.Source.Directory),
		SetupFile:    doc.Source.SetupFile,
		ScriptsDir:   joinIfRelative(baseDirectory, doc.Source.Scripts),
		OutputDir:    joinIfRelative(baseDirectory, doc.Output.Directory),
		Reproducible: doc.Output.Reproducible,
		Force:        doc.Output.Force,
	}

	if pkg.Identifier == "" {
		return nil, berror.InvalidArgument("package.identifier is required")
	}
	if pkg.Version == "" {
		return nil, berror.InvalidArgument("package.version is required")
	}
	if doc.Source.Directory == "" {
		return nil, berror.InvalidArgument("source.directory is required")
	}

	return pkg, nil
}

func joinIfRelative(base, path string) string {
	if path == "" || base == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return base + "/" + strings.TrimPrefix(path, "./")
}
