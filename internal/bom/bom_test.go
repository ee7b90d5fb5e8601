package bom

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestCreateRejectsEmpty(t *testing.T) {
	if _, err := Create(nil); err == nil {
		t.Fatal("expected an error for zero entries")
	}
}

func TestHeaderMagicAndVersion(t *testing.T) {
	data, err := Create([]Entry{{Path: "file.txt", Mode: 0o100644, Size: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:8]) != "BOMStore" {
		t.Fatalf("magic = %q, want BOMStore", data[0:8])
	}
	if v := binary.BigEndian.Uint32(data[8:12]); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestVarsOffsetAndOrder(t *testing.T) {
	data, err := Create([]Entry{{Path: "file.txt", Mode: 0o100644, Size: 5}})
	if err != nil {
		t.Fatal(err)
	}
	varsOffset := binary.BigEndian.Uint32(data[24:28])
	if varsOffset != 512 {
		t.Fatalf("varsOffset = %d, want 512", varsOffset)
	}

	vars := data[varsOffset:]
	count := binary.BigEndian.Uint32(vars[0:4])
	if count != 5 {
		t.Fatalf("var count = %d, want 5", count)
	}

	wantNames := []string{"BomInfo", "Paths", "HLIndex", "VIndex", "Size64"}
	pos := 4
	for _, want := range wantNames {
		pos += 4 // block index
		nameLen := int(vars[pos])
		pos++
		got := string(vars[pos : pos+nameLen])
		if got != want {
			t.Errorf("var name = %q, want %q", got, want)
		}
		pos += nameLen
	}
}

func TestDeterministic(t *testing.T) {
	entries := []Entry{
		{Path: "Applications/MyApp.app/Contents/MacOS/myapp", Mode: 0o100755, UID: 0, GID: 80, Size: 1024},
		{Path: "Applications/MyApp.app/Contents/Info.plist", Mode: 0o100644, UID: 0, GID: 80, Size: 256},
	}
	a, err := Create(entries)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Create(entries)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two Create calls over identical input produced different bytes")
	}
}

func TestPathCountForNestedApp(t *testing.T) {
	// "." + Applications + MyApp.app + Contents + MacOS + myapp = 6 paths.
	entries := []Entry{
		{Path: "Applications/MyApp.app/Contents/MacOS/myapp", Mode: 0o100755, UID: 0, GID: 80, Size: 2048},
	}
	data, err := Create(entries)
	if err != nil {
		t.Fatal(err)
	}

	varsOffset := binary.BigEndian.Uint32(data[24:28])
	vars := data[varsOffset:]
	bomInfoBlock := binary.BigEndian.Uint32(vars[4:8])

	blockTableOffset := binary.BigEndian.Uint32(data[16:20])
	blockTable := data[blockTableOffset:]
	numBlocks := binary.BigEndian.Uint32(blockTable[0:4])
	if bomInfoBlock == 0 || bomInfoBlock >= numBlocks {
		t.Fatalf("BomInfo block index %d out of range", bomInfoBlock)
	}
	entryOff := 4 + int(bomInfoBlock)*8
	blockOffset := binary.BigEndian.Uint32(blockTable[entryOff : entryOff+4])

	numberOfPaths := binary.BigEndian.Uint32(data[blockOffset+4 : blockOffset+8])
	if numberOfPaths != 6 {
		t.Fatalf("numberOfPaths = %d, want 6", numberOfPaths)
	}
}

func TestSingleFileAtRoot(t *testing.T) {
	entries := []Entry{{Path: "readme.txt", Mode: 0o100644, Size: 10}}
	data, err := Create(entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 512 {
		t.Fatalf("container shorter than the header: %d bytes", len(data))
	}
}
