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

// Package xar writes the eXtensible ARchive container that every flat
// macOS installer package is wrapped in: a 28-byte header, a
// zlib-compressed XML table of contents, and a heap holding the TOC's own
// SHA-1 checksum followed by the raw bytes of every file entry.
package xar

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/holocm/holo-pkg/internal/berror"
)

const (
	magic      = "xar!"
	headerSize = 28
	version    = 1

	checksumAlgoSHA1 = 1
	sha1Size         = 20
)

type entryType int

const (
	typeFile entryType = iota
	typeDirectory
)

type entry struct {
	name      string
	path      string
	kind      entryType
	data      []byte
	id        uint64
	parentID  uint64
	hasParent bool
}

// Builder accumulates files and directories and assembles them into a XAR
// archive. Entries keep the order they were added in; a directory's
// children are any later entries whose path is "<dir>/<name>".
type Builder struct {
	entries []entry
	nextID  uint64
}

// NewBuilder returns an empty Builder. The first entry added is assigned
// id 1.
func NewBuilder() *Builder {
	return &Builder{nextID: 1}
}

// AddFile adds a file entry at path with the given contents.
func (b *Builder) AddFile(path string, data []byte) {
	b.add(path, typeFile, data)
}

// AddDirectory adds a directory entry at path. Directories must be added
// before any of their children for parent linkage to resolve.
func (b *Builder) AddDirectory(path string) {
	b.add(path, typeDirectory, nil)
}

func (b *Builder) add(path string, kind entryType, data []byte) {
	name := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		name = path[idx+1:]
	}
	parentID, hasParent := b.findParentID(path)
	b.entries = append(b.entries, entry{
		name: name, path: path, kind: kind, data: data,
		id: b.nextID, parentID: parentID, hasParent: hasParent,
	})
	b.nextID++
}

func (b *Builder) findParentID(path string) (uint64, bool) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return 0, false
	}
	parentPath := path[:idx]
	for _, e := range b.entries {
		if e.path == parentPath && e.kind == typeDirectory {
			return e.id, true
		}
	}
	return 0, false
}

// Build assembles the archive: TOC XML, zlib-compressed, prefixed by the
// 28-byte header, followed by a heap of the TOC's own SHA-1 checksum and
// then every file's raw bytes in the same depth-first order the TOC's
// own <offset> fields are computed in (directories recurse into their
// children before their parent's later siblings are visited), so heap
// layout always matches what the TOC declares regardless of the order
// entries were added in.
func (b *Builder) Build() ([]byte, error) {
	tocXML, fileOrder := b.generateTOC()
	tocBytes := []byte(tocXML)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(tocBytes); err != nil {
		return nil, berror.Internal(err)
	}
	if err := zw.Close(); err != nil {
		return nil, berror.Internal(err)
	}

	var out bytes.Buffer
	out.Write(header(uint64(compressed.Len()), uint64(len(tocBytes))))
	out.Write(compressed.Bytes())

	tocChecksum := sha1.Sum(compressed.Bytes())
	out.Write(tocChecksum[:])

	for _, e := range fileOrder {
		out.Write(e.data)
	}

	return out.Bytes(), nil
}

func header(tocCompressedLen, tocUncompressedLen uint64) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic)
	binary.BigEndian.PutUint16(buf[4:6], headerSize)
	binary.BigEndian.PutUint16(buf[6:8], version)
	binary.BigEndian.PutUint64(buf[8:16], tocCompressedLen)
	binary.BigEndian.PutUint64(buf[16:24], tocUncompressedLen)
	binary.BigEndian.PutUint32(buf[24:28], checksumAlgoSHA1)
	return buf
}

// generateTOC renders the TOC XML. Indentation mirrors a hand-written
// document rather than a generic tree-printer, since the TOC shape is
// fixed: one <checksum> pointing at heap offset 0, then every entry
// nested under its parent. It also returns every file entry in the
// exact depth-first order its <offset> fields were computed in, so
// Build can lay out the heap identically.
func (b *Builder) generateTOC() (string, []entry) {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<xar>\n")
	buf.WriteString("  <toc>\n")
	buf.WriteString("    <checksum style=\"sha1\">\n")
	buf.WriteString("      <offset>0</offset>\n")
	fmt.Fprintf(&buf, "      <size>%d</size>\n", sha1Size)
	buf.WriteString("    </checksum>\n")
	var fileOrder []entry
	b.writeEntries(&buf, 2, nil, sha1Size, &fileOrder)
	buf.WriteString("  </toc>\n")
	buf.WriteString("</xar>\n")
	return buf.String(), fileOrder
}

func (b *Builder) writeEntries(buf *strings.Builder, depth int, parentID *uint64, heapOffset uint64, fileOrder *[]entry) uint64 {
	indent := strings.Repeat("  ", depth)
	currentOffset := heapOffset

	for _, e := range b.entries {
		switch {
		case parentID == nil && e.hasParent:
			continue
		case parentID != nil && (!e.hasParent || e.parentID != *parentID):
			continue
		}

		fmt.Fprintf(buf, "%s<file id=\"%d\">\n", indent, e.id)
		fmt.Fprintf(buf, "%s  <name>%s</name>\n", indent, escapeXML(e.name))

		typeStr := "file"
		if e.kind == typeDirectory {
			typeStr = "directory"
		}
		fmt.Fprintf(buf, "%s  <type>%s</type>\n", indent, typeStr)

		if e.kind == typeFile {
			checksum := fmt.Sprintf("%x", sha1.Sum(e.data))
			fmt.Fprintf(buf, "%s  <data>\n", indent)
			fmt.Fprintf(buf, "%s    <offset>%d</offset>\n", indent, currentOffset)
			fmt.Fprintf(buf, "%s    <size>%d</size>\n", indent, len(e.data))
			fmt.Fprintf(buf, "%s    <length>%d</length>\n", indent, len(e.data))
			fmt.Fprintf(buf, "%s    <extracted-checksum style=\"sha1\">%s</extracted-checksum>\n", indent, checksum)
			fmt.Fprintf(buf, "%s    <archived-checksum style=\"sha1\">%s</archived-checksum>\n", indent, checksum)
			fmt.Fprintf(buf, "%s    <encoding style=\"application/octet-stream\"/>\n", indent)
			fmt.Fprintf(buf, "%s  </data>\n", indent)
			currentOffset += uint64(len(e.data))
			*fileOrder = append(*fileOrder, e)
		}

		if e.kind == typeDirectory {
			id := e.id
			currentOffset = b.writeEntries(buf, depth+1, &id, currentOffset, fileOrder)
		}

		fmt.Fprintf(buf, "%s</file>\n", indent)
	}

	return currentOffset
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
