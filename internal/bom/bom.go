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

// Package bom writes Apple's Bill-of-Materials container: the binary
// manifest of paths, modes and ownership that lsbom, pkgutil and the
// system receipts database all consume. The block/variable layout below
// mirrors bomutils' own mkbom output byte for byte.
package bom

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/holocm/holo-pkg/internal/berror"
)

const (
	typeFile = 1
	typeDir  = 2
)

// Entry is one filesystem object to record in the BOM. Mode carries the
// Unix file-type bits (0o040000 for directories, 0o100000 for regular
// files) in addition to the permission bits.
type Entry struct {
	Path string
	Mode uint32
	UID  uint32
	GID  uint32
	Size uint64
}

type namedVar struct {
	name  string
	block uint32
}

// writer accumulates blocks and named variables exactly the way bomutils'
// internal BOM builder does: block 0 is always the null block, and every
// subsequent block is appended and addressed by its insertion index.
type writer struct {
	blocks [][]byte
	vars   []namedVar
}

func newWriter() *writer {
	return &writer{blocks: [][]byte{nil}}
}

func (w *writer) addBlock(data []byte) uint32 {
	idx := uint32(len(w.blocks))
	w.blocks = append(w.blocks, data)
	return idx
}

func (w *writer) addVar(name string, block uint32) {
	w.vars = append(w.vars, namedVar{name, block})
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// buildTree writes a "tree" block pointing at childBlock: magic "tree",
// version 1, the child block index, a fixed block size, and the path
// count this tree covers.
func (w *writer) buildTree(childBlock, blockSize, pathCount uint32) uint32 {
	var buf bytes.Buffer
	buf.WriteString("tree")
	putU32(&buf, 1)
	putU32(&buf, childBlock)
	putU32(&buf, blockSize)
	putU32(&buf, pathCount)
	buf.WriteByte(0)
	return w.addBlock(buf.Bytes())
}

// buildEmptyTree writes an empty leaf and a tree pointing at it, used for
// the HLIndex and Size64 variables that this writer never populates.
func (w *writer) buildEmptyTree() uint32 {
	emptyLeaf := w.addBlock(emptyLeafBytes())
	return w.buildTree(emptyLeaf, 4096, 0)
}

// buildVIndex writes the VIndex variable's special shape: an empty leaf, a
// tree with block size 128 pointing at it, and a 13-byte descriptor that
// the VIndex variable actually points to (not the tree itself).
func (w *writer) buildVIndex() uint32 {
	emptyLeaf := w.addBlock(emptyLeafBytes())
	treeBlock := w.buildTree(emptyLeaf, 128, 0)

	var descriptor bytes.Buffer
	putU32(&descriptor, 1)
	putU32(&descriptor, treeBlock)
	putU32(&descriptor, 0)
	descriptor.WriteByte(0)
	return w.addBlock(descriptor.Bytes())
}

func emptyLeafBytes() []byte {
	var buf bytes.Buffer
	putU16(&buf, 1) // isLeaf
	putU16(&buf, 0) // count
	putU32(&buf, 0) // forward
	putU32(&buf, 0) // backward
	return buf.Bytes()
}

// build assembles the final container: 512-byte header, vars table, block
// data (block 0 skipped), then the block table.
func (w *writer) build() []byte {
	const headerSize = 512

	var varsData bytes.Buffer
	putU32(&varsData, uint32(len(w.vars)))
	for _, v := range w.vars {
		putU32(&varsData, v.block)
		varsData.WriteByte(byte(len(v.name)))
		varsData.WriteString(v.name)
	}

	totalBlocksSize := 0
	for _, b := range w.blocks[1:] {
		totalBlocksSize += len(b)
	}

	varsOffset := headerSize
	blocksStart := varsOffset + varsData.Len()
	indexOffset := blocksStart + totalBlocksSize

	var blockTable bytes.Buffer
	putU32(&blockTable, uint32(len(w.blocks)))
	currentOffset := uint32(blocksStart)
	for i, b := range w.blocks {
		if i == 0 {
			putU32(&blockTable, 0)
			putU32(&blockTable, 0)
			continue
		}
		putU32(&blockTable, currentOffset)
		putU32(&blockTable, uint32(len(b)))
		currentOffset += uint32(len(b))
	}
	putU32(&blockTable, 0) // numberOfFreeListPointers

	var out bytes.Buffer
	out.WriteString("BOMStore")
	putU32(&out, 1)
	putU32(&out, uint32(len(w.blocks)-1))
	putU32(&out, uint32(indexOffset))
	putU32(&out, uint32(blockTable.Len()))
	putU32(&out, uint32(varsOffset))
	putU32(&out, uint32(varsData.Len()))
	for out.Len() < headerSize {
		out.WriteByte(0)
	}
	out.Write(varsData.Bytes())
	for _, b := range w.blocks[1:] {
		out.Write(b)
	}
	out.Write(blockTable.Bytes())

	return out.Bytes()
}

type pathEntry struct {
	path  string
	entry *Entry
}

// Create builds a BOM container from entries. Path ids are assigned in
// the order entries are supplied: the synthetic root "." is id 1, then
// each path component (including implicit parent directories) is added
// left to right, the first occurrence winning the next id. This makes the
// output a pure function of (entries, their order) alone.
func Create(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, berror.InvalidArgument("cannot create a BOM with no entries")
	}

	w := newWriter()
	bomInfoPlaceholder := w.addBlock(make([]byte, 28))

	pathIDs := map[string]uint32{".": 1}
	allPaths := []pathEntry{{path: "."}}
	nextID := uint32(2)

	for i := range entries {
		e := &entries[i]
		clean := strings.Trim(e.Path, "/")
		components := strings.Split(clean, "/")
		var current []string
		for _, c := range components {
			current = append(current, c)
			currentStr := strings.Join(current, "/")
			if _, ok := pathIDs[currentStr]; ok {
				continue
			}
			pathIDs[currentStr] = nextID
			if currentStr == clean {
				allPaths = append(allPaths, pathEntry{path: currentStr, entry: e})
			} else {
				allPaths = append(allPaths, pathEntry{path: currentStr})
			}
			nextID++
		}
	}

	pathInfo2Blocks := make(map[uint32]uint32, len(allPaths))
	for _, p := range allPaths {
		id := pathIDs[p.path]
		pathInfo2Blocks[id] = w.addBlock(buildPathInfo2(p.entry))
	}

	pathInfo1Blocks := make(map[uint32]uint32, len(allPaths))
	for _, p := range allPaths {
		id := pathIDs[p.path]
		var buf bytes.Buffer
		putU32(&buf, id)
		putU32(&buf, pathInfo2Blocks[id])
		pathInfo1Blocks[id] = w.addBlock(buf.Bytes())
	}

	fileBlocks := make(map[uint32]uint32, len(allPaths))
	for _, p := range allPaths {
		id := pathIDs[p.path]
		fileBlocks[id] = w.addBlock(buildBOMFile(p.path, pathIDs))
	}

	var pathsData bytes.Buffer
	putU16(&pathsData, 1)
	putU16(&pathsData, uint16(len(allPaths)))
	putU32(&pathsData, 0)
	putU32(&pathsData, 0)
	for _, p := range allPaths {
		id := pathIDs[p.path]
		putU32(&pathsData, pathInfo1Blocks[id])
		putU32(&pathsData, fileBlocks[id])
	}
	pathsLeafBlock := w.addBlock(pathsData.Bytes())
	pathsTreeBlock := w.buildTree(pathsLeafBlock, 4096, uint32(len(allPaths)))

	hlIndexBlock := w.buildEmptyTree()
	vIndexBlock := w.buildVIndex()
	size64Block := w.buildEmptyTree()

	var bomInfo bytes.Buffer
	putU32(&bomInfo, 1) // version
	putU32(&bomInfo, uint32(len(allPaths)))
	putU32(&bomInfo, 1) // numberOfInfoEntries
	bomInfoBytes := bomInfo.Bytes()
	bomInfoBytes = append(bomInfoBytes, make([]byte, 28-len(bomInfoBytes))...)
	w.blocks[bomInfoPlaceholder] = bomInfoBytes

	w.addVar("BomInfo", bomInfoPlaceholder)
	w.addVar("Paths", pathsTreeBlock)
	w.addVar("HLIndex", hlIndexBlock)
	w.addVar("VIndex", vIndexBlock)
	w.addVar("Size64", size64Block)

	return w.build(), nil
}

func buildPathInfo2(e *Entry) []byte {
	var buf bytes.Buffer
	switch {
	case e == nil:
		// Implicit parent directory: synthesized with fixed ownership.
		buf.WriteByte(typeDir)
		buf.WriteByte(1)
		putU16(&buf, 3)
		putU16(&buf, 0o40755)
		putU32(&buf, 0)
		putU32(&buf, 80)
		putU32(&buf, 0)
		putU32(&buf, 0)
		buf.WriteByte(1)
		putU32(&buf, 0)
		putU32(&buf, 0)
	default:
		typ := byte(typeFile)
		if e.Mode&0o170000 == 0o040000 {
			typ = typeDir
		}
		buf.WriteByte(typ)
		buf.WriteByte(1)
		putU16(&buf, 3)
		putU16(&buf, uint16(e.Mode&0xFFFF))
		putU32(&buf, e.UID)
		putU32(&buf, e.GID)
		putU32(&buf, 0)
		putU32(&buf, uint32(e.Size))
		buf.WriteByte(1)
		putU32(&buf, 0)
		putU32(&buf, 0)
	}
	return buf.Bytes()
}

func buildBOMFile(path string, pathIDs map[string]uint32) []byte {
	var parentID uint32
	var name string

	switch {
	case path == ".":
		parentID, name = 0, "."
	default:
		idx := strings.LastIndex(path, "/")
		if idx < 0 {
			parentID, name = 1, path
		} else {
			parent := path[:idx]
			if id, ok := pathIDs[parent]; ok {
				parentID = id
			} else {
				parentID = 1
			}
			name = path[idx+1:]
		}
	}

	var buf bytes.Buffer
	putU32(&buf, parentID)
	buf.WriteString(name)
	buf.WriteByte(0)
	return buf.Bytes()
}
