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

// Package macospkg builds flat macOS installer packages: a staging folder
// becomes a BOM, a gzipped CPIO payload, PackageInfo/Distribution XML, and
// an optional gzipped CPIO of install scripts, all wrapped in a XAR
// archive.
package macospkg

import (
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
	"github.com/holocm/holo-pkg/internal/bom"
	"github.com/holocm/holo-pkg/internal/buildlog"
	"github.com/holocm/holo-pkg/internal/cpio"
	"github.com/holocm/holo-pkg/internal/installerxml"
	"github.com/holocm/holo-pkg/internal/xar"
)

const (
	dirMode = 0o040755
	dirGID  = 80
)

// BuildRequest describes one .pkg build.
type BuildRequest struct {
	SourceDir    string
	ScriptsDir   string
	Identifier   string
	Version      string
	Title        string
	Reproducible bool
}

// Build assembles a flat .pkg from req: scans SourceDir into BOM and CPIO
// entries, optionally packages ScriptsDir's preinstall/postinstall
// scripts, renders PackageInfo and Distribution, and wraps everything in a
// XAR archive.
func Build(req BuildRequest) ([]byte, error) {
	info, err := os.Stat(req.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, berror.SourceFolderNotFound(req.SourceDir)
	}

	buildlog.Phase("scan", "package", req.Identifier, "source", req.SourceDir)
	bomEntries, cpioEntries, totalBytes, err := scanTree(req.SourceDir)
	if err != nil {
		buildlog.Error("scan failed", err, "package", req.Identifier)
		return nil, err
	}
	if len(cpioEntries) == 0 {
		err := berror.SourceFolderEmpty(req.SourceDir)
		buildlog.Error("scan failed", err, "package", req.Identifier)
		return nil, err
	}

	var clock cpio.Clock
	if req.Reproducible {
		clock = func() time.Time { return time.Unix(0, 0) }
	}

	payload, err := cpio.CreatePayload(cpioEntries, clock)
	if err != nil {
		return nil, err
	}

	bomBytes, err := bom.Create(bomEntries)
	if err != nil {
		return nil, err
	}

	hasPreinstall, hasPostinstall, scriptsPayload, err := buildScripts(req.ScriptsDir, clock)
	if err != nil {
		return nil, err
	}

	installKBytes := totalBytes / 1024
	packageInfo := installerxml.GeneratePackageInfo(installerxml.PackageInfo{
		Identifier:      req.Identifier,
		Version:         req.Version,
		InstallLocation: "/",
		InstallKBytes:   installKBytes,
		NumFiles:        len(cpioEntries),
		HasPreinstall:   hasPreinstall,
		HasPostinstall:  hasPostinstall,
	})
	distribution := installerxml.GenerateDistribution(installerxml.Distribution{
		Identifier:    req.Identifier,
		Title:         req.Title,
		Version:       req.Version,
		InstallKBytes: installKBytes,
	})

	buildlog.Phase("assemble", "package", req.Identifier)
	builder := xar.NewBuilder()
	builder.AddFile("Distribution", []byte(distribution))
	builder.AddDirectory("base.pkg")
	builder.AddFile("base.pkg/Bom", bomBytes)
	builder.AddFile("base.pkg/Payload", payload)
	builder.AddFile("base.pkg/PackageInfo", []byte(packageInfo))
	if scriptsPayload != nil {
		builder.AddFile("base.pkg/Scripts", scriptsPayload)
	}

	archive, err := builder.Build()
	if err != nil {
		buildlog.Error("assemble failed", err, "package", req.Identifier)
		return nil, err
	}
	return archive, nil
}

// scanTree walks sourceDir, producing a BomEntry for every filesystem
// object (file or directory) and a cpio.Entry for every regular file, in
// lexicographic path order. totalBytes sums regular file sizes.
func scanTree(sourceDir string) (bomEntries []bom.Entry, cpioEntries []cpio.Entry, totalBytes uint64, err error) {
	var relPaths []string
	pathInfo := map[string]os.FileInfo{}

	walkErr := filepath.Walk(sourceDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		relPaths = append(relPaths, rel)
		pathInfo[rel] = fi
		return nil
	})
	if walkErr != nil {
		return nil, nil, 0, berror.Internal(walkErr)
	}

	sort.Strings(relPaths)

	for _, rel := range relPaths {
		fi := pathInfo[rel]
		uid, gid := ownership(fi)

		if fi.IsDir() {
			bomEntries = append(bomEntries, bom.Entry{
				Path: rel,
				Mode: dirMode,
				UID:  uid,
				GID:  gid,
			})
			continue
		}

		mode := uint32(0o100000) | uint32(fi.Mode().Perm())
		size := uint64(fi.Size())
		bomEntries = append(bomEntries, bom.Entry{
			Path: rel, Mode: mode, UID: uid, GID: gid, Size: size,
		})

		data, err := os.ReadFile(filepath.Join(sourceDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, nil, 0, berror.Internal(err)
		}
		cpioEntries = append(cpioEntries, cpio.Entry{
			Path: rel, Data: data, Mode: uint32(fi.Mode().Perm()),
		})
		totalBytes += size
	}

	return bomEntries, cpioEntries, totalBytes, nil
}

func ownership(fi os.FileInfo) (uid, gid uint32) {
	if stat, ok := fi.Sys().(*syscall.Stat_t); ok {
		return stat.Uid, stat.Gid
	}
	return 0, dirGID
}

// buildScripts gzips preinstall/postinstall from scriptsDir, if present.
// An empty scriptsDir is not an error: it simply means no Scripts member.
func buildScripts(scriptsDir string, clock cpio.Clock) (hasPreinstall, hasPostinstall bool, payload []byte, err error) {
	if scriptsDir == "" {
		return false, false, nil, nil
	}

	info, statErr := os.Stat(scriptsDir)
	if statErr != nil || !info.IsDir() {
		return false, false, nil, berror.ScriptsFolderNotFound(scriptsDir)
	}

	var entries []cpio.Entry
	for _, name := range []string{"preinstall", "postinstall"} {
		path := filepath.Join(scriptsDir, name)
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		entries = append(entries, cpio.Entry{Path: name, Data: data, Mode: 0o755})
		if name == "preinstall" {
			hasPreinstall = true
		} else {
			hasPostinstall = true
		}
	}

	if len(entries) == 0 {
		return false, false, nil, berror.NoScriptsFound(scriptsDir)
	}

	payload, err = cpio.CreatePayload(entries, clock)
	if err != nil {
		return false, false, nil, err
	}
	return hasPreinstall, hasPostinstall, payload, nil
}

// Generator adapts Build to common.Generator for the CLI's
// build-orchestration path.
type Generator struct{}

// Validate checks the fields BuildInMemory actually needs.
func (Generator) Validate(pkg *common.Package) []error {
	ec := common.ErrorCollector{}
	if pkg.SourceDir == "" {
		ec.Add(berror.InvalidArgument("macOS packages require a source folder"))
	}
	if pkg.Identifier == "" {
		ec.Add(berror.InvalidArgument("macOS packages require an identifier"))
	}
	if pkg.Version == "" {
		ec.Add(berror.InvalidArgument("macOS packages require a version"))
	}
	return ec.Errors
}

// Build always fails: this generator only supports in-memory building.
func (Generator) Build(pkg *common.Package, buildReproducibly bool) ([]byte, error) {
	return nil, common.UnsupportedBuildMethodError
}

// BuildInMemory builds a .pkg container from pkg's fields.
func (Generator) BuildInMemory(pkg *common.Package, buildReproducibly bool) ([]byte, error) {
	title := pkg.Name
	if title == "" {
		title = pkg.Identifier
	}
	return Build(BuildRequest{
		SourceDir:    pkg.SourceDir,
		ScriptsDir:   pkg.ScriptsDir,
		Identifier:   pkg.Identifier,
		Version:      pkg.Version,
		Title:        title,
		Reproducible: buildReproducibly,
	})
}

// RecommendedFileName is "<identifier>-<version>.pkg".
func (Generator) RecommendedFileName(pkg *common.Package) string {
	return pkg.Identifier + "-" + pkg.Version + ".pkg"
}
