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

// Package config loads the operator's on-disk CLI preferences from
// ~/.config/holo-pkg/config.yaml. It only loads and decodes the file: the
// holo-pkg commands do not call Load, so these values are not applied to
// CLI flags, manifests, or builds.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preferences is the decoded shape of config.yaml. All fields are
// optional; a missing file yields a zero-value Preferences, not an error.
type Preferences struct {
	DefaultOutputDir string `yaml:"defaultOutputDir"`
	Quiet            bool   `yaml:"quiet"`
	Force            bool   `yaml:"force"`
}

// Load reads and parses path. A missing file is not an error: it returns
// a zero-value Preferences so the CLI falls back to its built-in defaults.
func Load(path string) (*Preferences, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var prefs Preferences
	if err := dec.Decode(&prefs); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &prefs, nil
}

// DefaultPath returns ~/.config/holo-pkg/config.yaml, or "" if the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/holo-pkg/config.yaml"
}
