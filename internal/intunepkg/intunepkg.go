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

// Package intunepkg builds and unpacks .intunewin containers: a staging
// folder becomes an encrypted, Detection.xml-described ZIP that Microsoft
// Intune's own client can consume, and the reverse operation recovers the
// original files from such a container.
package intunepkg

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
	"github.com/holocm/holo-pkg/internal/buildlog"
	"github.com/holocm/holo-pkg/internal/cryptoframe"
	"github.com/holocm/holo-pkg/internal/detection"
)

// PackageRequest describes one .intunewin build.
type PackageRequest struct {
	SourceDir string
	SetupFile string
}

// UnpackResult is what survives unpacking: the rest is written to disk.
type UnpackResult struct {
	SetupFile string
}

// Package builds a .intunewin container from req. It validates the source
// folder and setup file, zips the folder's contents (sorted
// lexicographically, Deflate-compressed), encrypts that inner ZIP, emits
// Detection.xml, and wraps both in an uncompressed outer ZIP.
func Package(req PackageRequest) ([]byte, error) {
	info, err := os.Stat(req.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, berror.SourceFolderNotFound(req.SourceDir)
	}

	setupPath := filepath.Join(req.SourceDir, filepath.FromSlash(req.SetupFile))
	if fi, err := os.Stat(setupPath); err != nil || fi.IsDir() {
		return nil, berror.SetupFileNotFound(req.SetupFile, req.SourceDir)
	}

	buildlog.Phase("scan", "package", req.SetupFile, "source", req.SourceDir)
	relPaths, err := walkFiles(req.SourceDir)
	if err != nil {
		buildlog.Error("scan failed", err, "package", req.SetupFile)
		return nil, err
	}
	if len(relPaths) == 0 {
		err := berror.SourceFolderEmpty(req.SourceDir)
		buildlog.Error("scan failed", err, "package", req.SetupFile)
		return nil, err
	}

	innerZip, err := buildInnerZip(req.SourceDir, relPaths)
	if err != nil {
		buildlog.Error("scan failed", err, "package", req.SetupFile)
		return nil, err
	}

	buildlog.Phase("encrypt", "package", req.SetupFile, "bytes", len(innerZip))
	framed, info2, err := cryptoframe.Encrypt(innerZip)
	if err != nil {
		buildlog.Error("encrypt failed", err, "package", req.SetupFile)
		return nil, err
	}

	xmlDoc := detection.Generate(detection.Metadata{
		Name:                   req.SetupFile,
		UnencryptedContentSize: uint64(len(innerZip)),
		FileName:               detection.InnerFileName,
		SetupFile:              req.SetupFile,
		EncryptionKey:          info2.EncryptionKey,
		MacKey:                 info2.MacKey,
		InitializationVector:   info2.IV,
		Mac:                    info2.Mac,
		ProfileIdentifier:      cryptoframe.ProfileIdentifier,
		FileDigest:             info2.FileDigest,
		FileDigestAlgorithm:    cryptoframe.FileDigestAlgorithm,
	})

	buildlog.Phase("assemble", "package", req.SetupFile)
	outer, err := buildOuterZip(framed, []byte(xmlDoc))
	if err != nil {
		buildlog.Error("assemble failed", err, "package", req.SetupFile)
		return nil, err
	}
	return outer, nil
}

// Unpack reads a .intunewin container from containerBytes, decrypts its
// payload, and writes every file entry under outputDir.
func Unpack(containerBytes []byte, outputDir string) (*UnpackResult, error) {
	r, err := zip.NewReader(bytes.NewReader(containerBytes), int64(len(containerBytes)))
	if err != nil {
		return nil, berror.InvalidContainer("", "not a valid zip archive")
	}

	var detectionXML, encrypted []byte
	for _, f := range r.File {
		switch {
		case strings.HasSuffix(f.Name, "Metadata/Detection.xml"):
			if detectionXML, err = readZipFile(f); err != nil {
				return nil, berror.Internal(err)
			}
		case strings.HasSuffix(f.Name, "Contents/IntunePackage.intunewin"):
			if encrypted, err = readZipFile(f); err != nil {
				return nil, berror.Internal(err)
			}
		}
	}
	if detectionXML == nil {
		return nil, berror.InvalidContainer("", "missing Metadata/Detection.xml")
	}
	if encrypted == nil {
		return nil, berror.InvalidContainer("", "missing Contents/IntunePackage.intunewin")
	}

	meta, err := detection.Parse(detectionXML)
	if err != nil {
		return nil, err
	}

	plaintext, err := cryptoframe.Decrypt(encrypted, &cryptoframe.Info{
		EncryptionKey: meta.EncryptionKey,
		MacKey:        meta.MacKey,
	})
	if err != nil {
		return nil, err
	}

	innerReader, err := zip.NewReader(bytes.NewReader(plaintext), int64(len(plaintext)))
	if err != nil {
		return nil, berror.InvalidContainer("", "decrypted content is not a valid zip archive")
	}

	for _, f := range innerReader.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		destPath := filepath.Join(outputDir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return nil, berror.Internal(err)
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, berror.Internal(err)
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			return nil, berror.Internal(err)
		}
	}

	return &UnpackResult{SetupFile: meta.SetupFile}, nil
}

func walkFiles(root string) ([]string, error) {
	var paths []string
	var walk func(dir, relPrefix string) error
	walk = func(dir, relPrefix string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return berror.Internal(err)
		}
		for _, de := range entries {
			full := filepath.Join(dir, de.Name())
			rel := de.Name()
			if relPrefix != "" {
				rel = relPrefix + "/" + de.Name()
			}
			// os.Stat (not Lstat) follows symlinks, as required.
			info, err := os.Stat(full)
			if err != nil {
				return berror.Internal(err)
			}
			if info.IsDir() {
				if err := walk(full, rel); err != nil {
					return err
				}
			} else {
				paths = append(paths, rel)
			}
		}
		return nil
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func buildInnerZip(sourceDir string, relPaths []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, rel := range relPaths {
		data, err := os.ReadFile(filepath.Join(sourceDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, berror.Internal(err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: rel, Method: zip.Deflate})
		if err != nil {
			return nil, berror.Internal(err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, berror.Internal(err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, berror.Internal(err)
	}
	return buf.Bytes(), nil
}

func buildOuterZip(encrypted, detectionXML []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: "IntuneWinPackage/Contents/IntunePackage.intunewin", Method: zip.Store})
	if err != nil {
		return nil, berror.Internal(err)
	}
	if _, err := w.Write(encrypted); err != nil {
		return nil, berror.Internal(err)
	}

	w, err = zw.CreateHeader(&zip.FileHeader{Name: "IntuneWinPackage/Metadata/Detection.xml", Method: zip.Store})
	if err != nil {
		return nil, berror.Internal(err)
	}
	if _, err := w.Write(detectionXML); err != nil {
		return nil, berror.Internal(err)
	}

	if err := zw.Close(); err != nil {
		return nil, berror.Internal(err)
	}
	return buf.Bytes(), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Generator adapts Package to common.Generator for the CLI's
// build-orchestration path.
type Generator struct{}

// Validate checks the fields BuildInMemory actually needs.
func (Generator) Validate(pkg *common.Package) []error {
	ec := common.ErrorCollector{}
	if pkg.SourceDir == "" {
		ec.Add(berror.InvalidArgument("intune packages require a source folder"))
	}
	if pkg.SetupFile == "" {
		ec.Add(berror.InvalidArgument("intune packages require a setup file"))
	}
	return ec.Errors
}

// Build always fails: this generator only supports in-memory building.
func (Generator) Build(pkg *common.Package, buildReproducibly bool) ([]byte, error) {
	return nil, common.UnsupportedBuildMethodError
}

// BuildInMemory builds a .intunewin container from pkg's SourceDir and
// SetupFile.
func (Generator) BuildInMemory(pkg *common.Package, buildReproducibly bool) ([]byte, error) {
	return Package(PackageRequest{SourceDir: pkg.SourceDir, SetupFile: pkg.SetupFile})
}

// RecommendedFileName mirrors the setup file's base name with a
// .intunewin extension, e.g. "setup.exe" -> "setup.intunewin".
func (Generator) RecommendedFileName(pkg *common.Package) string {
	base := filepath.Base(pkg.SetupFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".intunewin"
}
