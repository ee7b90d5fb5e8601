package macospkg

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func tocOf(t *testing.T, pkgBytes []byte) string {
	t.Helper()
	if len(pkgBytes) < 28 || string(pkgBytes[0:4]) != "xar!" {
		t.Fatalf("package does not start with xar! magic")
	}
	tocCompressedLen := be64(pkgBytes[8:16])
	compressed := pkgBytes[28 : 28+tocCompressedLen]
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib decompress TOC: %v", err)
	}
	toc, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read TOC: %v", err)
	}
	return string(toc)
}

func be64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// memberData returns the heap bytes of the XAR file entry named name, as
// located by the <offset> and <size> its TOC entry declares.
func memberData(t *testing.T, pkgBytes []byte, toc, name string) string {
	t.Helper()
	idx := strings.Index(toc, "<name>"+name+"</name>")
	if idx < 0 {
		t.Fatalf("TOC does not contain entry %q", name)
	}
	entry := toc[idx:]
	offset := tagValue(t, entry, "offset")
	size := tagValue(t, entry, "size")
	heapStart := 28 + be64(pkgBytes[8:16])
	return string(pkgBytes[heapStart+offset : heapStart+offset+size])
}

func tagValue(t *testing.T, s, tag string) uint64 {
	t.Helper()
	open := "<" + tag + ">"
	i := strings.Index(s, open)
	if i < 0 {
		t.Fatalf("missing %s", open)
	}
	s = s[i+len(open):]
	j := strings.Index(s, "</"+tag+">")
	if j < 0 {
		t.Fatalf("unterminated %s", open)
	}
	v, err := strconv.ParseUint(s[:j], 10, 64)
	if err != nil {
		t.Fatalf("%s value %q: %v", open, s[:j], err)
	}
	return v
}

func TestBuildShapeWithoutScripts(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	pkgBytes, err := Build(BuildRequest{
		SourceDir:  srcDir,
		Identifier: "com.test.app",
		Version:    "1.0.0",
		Title:      "Test App",
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(pkgBytes[0:4]) != "xar!" {
		t.Fatalf("package does not start with xar! magic")
	}

	toc := tocOf(t, pkgBytes)
	for _, want := range []string{
		"<name>Distribution</name>",
		"<name>base.pkg</name>",
		"<name>Bom</name>",
		"<name>Payload</name>",
		"<name>PackageInfo</name>",
	} {
		if !strings.Contains(toc, want) {
			t.Errorf("TOC missing %s", want)
		}
	}
	if strings.Contains(toc, "<name>Scripts</name>") {
		t.Errorf("TOC should not contain Scripts when no scripts folder is given")
	}
}

func TestBuildWithScriptsAddsScriptsMember(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	scriptsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(scriptsDir, "preinstall"), []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}

	pkgBytes, err := Build(BuildRequest{
		SourceDir:  srcDir,
		ScriptsDir: scriptsDir,
		Identifier: "com.test.app",
		Version:    "1.0.0",
		Title:      "Test App",
	})
	if err != nil {
		t.Fatal(err)
	}

	toc := tocOf(t, pkgBytes)
	if !strings.Contains(toc, "<name>Scripts</name>") {
		t.Errorf("TOC should contain Scripts when a scripts folder with preinstall is given")
	}
	packageInfo := memberData(t, pkgBytes, toc, "PackageInfo")
	if !strings.Contains(packageInfo, `<preinstall file="./preinstall"/>`) {
		t.Errorf("PackageInfo should declare preinstall script")
	}
	if strings.Contains(packageInfo, "postinstall") {
		t.Errorf("PackageInfo should not mention postinstall when it wasn't supplied")
	}
}

func TestBuildRejectsMissingSourceFolder(t *testing.T) {
	if _, err := Build(BuildRequest{SourceDir: "/nonexistent/path", Identifier: "com.test.app", Version: "1.0.0"}); err == nil {
		t.Fatal("expected an error for a missing source folder")
	}
}

func TestBuildRejectsEmptySourceFolder(t *testing.T) {
	srcDir := t.TempDir()
	if _, err := Build(BuildRequest{SourceDir: srcDir, Identifier: "com.test.app", Version: "1.0.0"}); err == nil {
		t.Fatal("expected an error for an empty source folder")
	}
}

func TestBuildRejectsScriptsFolderWithNeitherScript(t *testing.T) {
	srcDir := t.TempDir()
	os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0644)
	scriptsDir := t.TempDir()

	if _, err := Build(BuildRequest{
		SourceDir: srcDir, ScriptsDir: scriptsDir,
		Identifier: "com.test.app", Version: "1.0.0",
	}); err == nil {
		t.Fatal("expected an error for a scripts folder with no preinstall/postinstall")
	}
}

func TestBuildIncludesNestedDirectories(t *testing.T) {
	srcDir := t.TempDir()
	nested := filepath.Join(srcDir, "Applications", "MyApp.app", "Contents", "MacOS")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "myapp"), []byte("binary"), 0755); err != nil {
		t.Fatal(err)
	}

	pkgBytes, err := Build(BuildRequest{
		SourceDir:  srcDir,
		Identifier: "com.test.app",
		Version:    "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pkgBytes) == 0 {
		t.Fatal("expected non-empty package")
	}
}
