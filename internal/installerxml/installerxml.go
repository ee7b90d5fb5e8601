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

// Package installerxml generates the two XML documents every flat macOS
// installer package carries: PackageInfo (installed inside base.pkg,
// describing the payload) and Distribution (at the archive root,
// describing the installer UI and choices).
package installerxml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// PackageInfo holds the fields needed to render a PackageInfo document.
type PackageInfo struct {
	Identifier      string
	Version         string
	InstallLocation string
	InstallKBytes   uint64
	NumFiles        int
	HasPreinstall   bool
	HasPostinstall  bool
}

// GeneratePackageInfo renders the PackageInfo XML for pi.
func GeneratePackageInfo(pi PackageInfo) string {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")

	fmt.Fprintf(&buf, "<pkg-info format-version=\"2\" identifier=\"%s\" version=\"%s\" install-location=\"%s\" auth=\"root\">\n",
		escapeAttr(pi.Identifier), escapeAttr(pi.Version), escapeAttr(pi.InstallLocation))
	fmt.Fprintf(&buf, "  <payload installKBytes=\"%d\" numberOfFiles=\"%d\"/>\n", pi.InstallKBytes, pi.NumFiles)

	if pi.HasPreinstall || pi.HasPostinstall {
		buf.WriteString("  <scripts>\n")
		if pi.HasPreinstall {
			buf.WriteString("    <preinstall file=\"./preinstall\"/>\n")
		}
		if pi.HasPostinstall {
			buf.WriteString("    <postinstall file=\"./postinstall\"/>\n")
		}
		buf.WriteString("  </scripts>\n")
	}

	buf.WriteString("</pkg-info>\n")
	return buf.String()
}

// Distribution holds the fields needed to render a Distribution document.
type Distribution struct {
	Identifier    string
	Title         string
	Version       string
	InstallKBytes uint64
}

// GenerateDistribution renders the Distribution XML for d. The document
// always describes a single, non-customizable choice installing
// "#base.pkg" — this builder never emits multi-package bundles.
func GenerateDistribution(d Distribution) string {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")

	buf.WriteString("<installer-gui-script minSpecVersion=\"1\">\n")
	fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(d.Title))
	buf.WriteString("  <options customize=\"never\" require-scripts=\"false\" hostArchitectures=\"x86_64,arm64\"/>\n")
	buf.WriteString("  <domains enable_anywhere=\"false\" enable_currentUserHome=\"false\" enable_localSystem=\"true\"/>\n")
	buf.WriteString("  <choices-outline>\n")
	buf.WriteString("    <line choice=\"default\"/>\n")
	buf.WriteString("  </choices-outline>\n")
	fmt.Fprintf(&buf, "  <choice id=\"default\" visible=\"false\" title=\"%s\">\n", escapeAttr(d.Title))
	fmt.Fprintf(&buf, "    <pkg-ref id=\"%s\"/>\n", escapeAttr(d.Identifier))
	buf.WriteString("  </choice>\n")
	fmt.Fprintf(&buf, "  <pkg-ref id=\"%s\" version=\"%s\" installKBytes=\"%d\">#base.pkg</pkg-ref>\n",
		escapeAttr(d.Identifier), escapeAttr(d.Version), d.InstallKBytes)
	buf.WriteString("</installer-gui-script>\n")
	return buf.String()
}

func escape(s string) string {
	var buf strings.Builder
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// escapeAttr escapes s for use inside a double-quoted XML attribute value.
// xml.EscapeText already escapes '&', '<', '>', and '"' (to "&#34;"), which
// is exactly what's unsafe inside "...", so this is the same escaper as
// escape() used in the attribute rather than element-text context.
func escapeAttr(s string) string {
	return escape(s)
}
