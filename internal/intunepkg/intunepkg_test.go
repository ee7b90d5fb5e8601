package intunepkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holocm/holo-pkg/internal/cryptoframe"
)

func TestPackageAndUnpackRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "setup.exe"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	container, err := Package(PackageRequest{SourceDir: srcDir, SetupFile: "setup.exe"})
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	result, err := Unpack(container, outDir)
	if err != nil {
		t.Fatal(err)
	}
	if result.SetupFile != "setup.exe" {
		t.Errorf("SetupFile = %q, want setup.exe", result.SetupFile)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "setup.exe"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q, want hello", got)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one extracted file, got %d", len(entries))
	}
}

func TestPackageRejectsMissingSourceFolder(t *testing.T) {
	if _, err := Package(PackageRequest{SourceDir: "/nonexistent/path", SetupFile: "setup.exe"}); err == nil {
		t.Fatal("expected an error for a missing source folder")
	}
}

func TestPackageRejectsMissingSetupFile(t *testing.T) {
	srcDir := t.TempDir()
	os.WriteFile(filepath.Join(srcDir, "other.exe"), []byte("x"), 0644)
	if _, err := Package(PackageRequest{SourceDir: srcDir, SetupFile: "setup.exe"}); err == nil {
		t.Fatal("expected an error for a missing setup file")
	}
}

func TestPackageRejectsEmptySourceFolder(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "setup.exe"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	os.Remove(filepath.Join(srcDir, "setup.exe"))
	if _, err := Package(PackageRequest{SourceDir: srcDir, SetupFile: "setup.exe"}); err == nil {
		t.Fatal("expected an error for an empty source folder")
	}
}

func TestTamperedFramedBlobFailsToDecrypt(t *testing.T) {
	srcDir := t.TempDir()
	os.WriteFile(filepath.Join(srcDir, "setup.exe"), []byte("hello"), 0644)

	innerZip, err := buildInnerZip(srcDir, []string{"setup.exe"})
	if err != nil {
		t.Fatal(err)
	}
	framed, info, err := cryptoframe.Encrypt(innerZip)
	if err != nil {
		t.Fatal(err)
	}
	framed[0] ^= 0xFF

	_, err = cryptoframe.Decrypt(framed, info)
	if err == nil {
		t.Fatal("expected tamper detection to reject the flipped byte")
	}
}
