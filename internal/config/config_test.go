package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	prefs, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if prefs.DefaultOutputDir != "" || prefs.Quiet || prefs.Force {
		t.Errorf("expected zero-value Preferences, got %+v", prefs)
	}
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "defaultOutputDir: /tmp/dist\nquiet: true\nforce: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	prefs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if prefs.DefaultOutputDir != "/tmp/dist" {
		t.Errorf("DefaultOutputDir = %q", prefs.DefaultOutputDir)
	}
	if !prefs.Quiet {
		t.Errorf("Quiet = false, want true")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "defaultOutputDir: /tmp/dist\nbogusField: 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}
