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

// Package cpio writes the portable-ASCII ("odc") CPIO archives used as the
// macOS package Payload and Scripts members. Unlike the teacher's own
// rpm/payload.go, records here are not 4-byte-aligned: odc format has no
// alignment requirement, and pkgutil rejects padded odc archives.
package cpio

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"time"

	"github.com/holocm/holo-pkg/internal/berror"
)

const (
	magic = "070707"

	// rootUID is the fixed owner written into every file record.
	rootUID = 0
	// wheelGID is the fixed group written into every file record
	// (the "admin" group on macOS).
	wheelGID = 80
	// regularFileType is the S_IFREG type bit ORed into mode.
	regularFileType = 0o100000

	trailerName = "TRAILER!!!"
)

// Entry is one file to be written into a CPIO odc archive. Directories are
// not represented: the writer never emits directory records, and readers
// are expected to synthesize parent directories from entry paths.
type Entry struct {
	Path string
	Data []byte
	Mode uint32
}

// Clock returns the current time; it exists so builds can inject a fixed
// clock (time.Unix(0, 0)) to make the archive byte-for-byte reproducible,
// since mtime is the only non-pure field of this writer.
type Clock func() time.Time

// Create writes entries as a portable-ASCII ("odc") CPIO archive: a
// 76-byte octal-ASCII header per entry, followed by the NUL-terminated
// path and the raw file bytes, with no padding between records, finished
// by a magic TRAILER!!! record.
func Create(entries []Entry, now Clock) ([]byte, error) {
	if now == nil {
		now = time.Now
	}

	var buf bytes.Buffer
	mtime := uint64(now().Unix())

	for i, e := range entries {
		ino := uint32(i + 1)
		mode := regularFileType | (e.Mode & 0o7777)
		writeHeader(&buf, header{
			dev: 0, ino: ino, mode: mode,
			uid: rootUID, gid: wheelGID, nlink: 1, rdev: 0,
			mtime:    mtime,
			namesize: uint32(len(e.Path)) + 1,
			filesize: uint64(len(e.Data)),
		})
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(e.Data)
	}

	writeHeader(&buf, header{
		nlink: 1, namesize: uint32(len(trailerName)) + 1,
	})
	buf.WriteString(trailerName)
	buf.WriteByte(0)

	return buf.Bytes(), nil
}

// CreatePayload is Create, gzip-compressed (single member, default
// compression level) — the form macOS packages store Payload and Scripts
// members in.
func CreatePayload(entries []Entry, now Clock) ([]byte, error) {
	archive, err := Create(entries, now)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(archive); err != nil {
		return nil, berror.Internal(err)
	}
	if err := w.Close(); err != nil {
		return nil, berror.Internal(err)
	}
	return buf.Bytes(), nil
}

type header struct {
	dev, ino, mode, uid, gid, nlink, rdev uint32
	mtime                                 uint64
	namesize                              uint32
	filesize                              uint64
}

// writeHeader serializes h as the 76-byte odc header: magic(6) dev(6)
// ino(6) mode(6) uid(6) gid(6) nlink(6) rdev(6) mtime(11) namesize(6)
// filesize(11), every field octal-ASCII, zero-padded, no separators.
func writeHeader(buf *bytes.Buffer, h header) {
	fmt.Fprintf(buf, "%s%06o%06o%06o%06o%06o%06o%06o%011o%06o%011o",
		magic, h.dev, h.ino, h.mode, h.uid, h.gid, h.nlink, h.rdev,
		h.mtime, h.namesize, h.filesize,
	)
}
