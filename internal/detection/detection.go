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

// Package detection emits and parses Detection.xml, the metadata file
// carried alongside every .intunewin container. The emitter reproduces
// the reference tool's exact byte layout (no XML declaration, two-space
// indentation, CRLF line endings, fixed element order) so that Detection.xml
// written by this package is indistinguishable from Microsoft's own tool's
// output; the parser is deliberately more lenient, since it also has to
// read containers this tool did not itself produce.
package detection

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/holocm/holo-pkg/internal/berror"
)

// ToolVersion is the fixed ToolVersion attribute stamped on every
// Detection.xml this package emits.
const ToolVersion = "1.8.6.0"

// InnerFileName is the literal name every emitted Detection.xml records as
// the encrypted content's filename.
const InnerFileName = "IntunePackage.intunewin"

// Metadata is the fully decoded content of a Detection.xml document.
type Metadata struct {
	Name                   string
	UnencryptedContentSize uint64
	FileName               string
	SetupFile              string

	EncryptionKey        []byte
	MacKey               []byte
	InitializationVector []byte
	Mac                  []byte
	ProfileIdentifier    string
	FileDigest           []byte
	FileDigestAlgorithm  string
}

// Generate renders m as Detection.xml: no XML declaration, CRLF line
// endings, two-space indentation, and the fixed child element order the
// reference tool uses.
func Generate(m Metadata) string {
	var b strings.Builder

	b.WriteString(`<ApplicationInfo xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ToolVersion="` + ToolVersion + `">` + "\r\n")
	writeElement(&b, 1, "Name", escapeText(m.Name))
	writeElement(&b, 1, "UnencryptedContentSize", fmt.Sprintf("%d", m.UnencryptedContentSize))
	writeElement(&b, 1, "FileName", m.FileName)
	writeElement(&b, 1, "SetupFile", escapeText(m.SetupFile))

	b.WriteString("  <EncryptionInfo>\r\n")
	writeElement(&b, 2, "EncryptionKey", base64.StdEncoding.EncodeToString(m.EncryptionKey))
	writeElement(&b, 2, "MacKey", base64.StdEncoding.EncodeToString(m.MacKey))
	writeElement(&b, 2, "InitializationVector", base64.StdEncoding.EncodeToString(m.InitializationVector))
	writeElement(&b, 2, "Mac", base64.StdEncoding.EncodeToString(m.Mac))
	writeElement(&b, 2, "ProfileIdentifier", m.ProfileIdentifier)
	writeElement(&b, 2, "FileDigest", base64.StdEncoding.EncodeToString(m.FileDigest))
	writeElement(&b, 2, "FileDigestAlgorithm", m.FileDigestAlgorithm)
	b.WriteString("  </EncryptionInfo>\r\n")

	b.WriteString("</ApplicationInfo>\r\n")
	return b.String()
}

func writeElement(b *strings.Builder, depth int, tag, content string) {
	fmt.Fprintf(b, "%s<%s>%s</%s>\r\n", strings.Repeat("  ", depth), tag, content, tag)
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

type wireEncryptionInfo struct {
	EncryptionKey        string `xml:"EncryptionKey"`
	MacKey               string `xml:"MacKey"`
	InitializationVector string `xml:"InitializationVector"`
	Mac                  string `xml:"Mac"`
	ProfileIdentifier    string `xml:"ProfileIdentifier"`
	FileDigest           string `xml:"FileDigest"`
	FileDigestAlgorithm  string `xml:"FileDigestAlgorithm"`
}

type wireApplicationInfo struct {
	XMLName                xml.Name           `xml:"ApplicationInfo"`
	Name                   string             `xml:"Name"`
	UnencryptedContentSize uint64             `xml:"UnencryptedContentSize"`
	FileName               string             `xml:"FileName"`
	SetupFile              string             `xml:"SetupFile"`
	EncryptionInfo         wireEncryptionInfo `xml:"EncryptionInfo"`
}

// Parse decodes Detection.xml content. It tolerates an XML declaration and
// any child element order (encoding/xml matches by tag name, not
// position), but rejects a document missing Name or SetupFile, and
// validates that every Base64 field decodes to its fixed byte length.
func Parse(data []byte) (*Metadata, error) {
	var wire wireApplicationInfo
	if err := xml.Unmarshal(data, &wire); err != nil {
		return nil, berror.XMLError(err)
	}
	if wire.Name == "" {
		return nil, berror.InvalidContainer("Detection.xml", "missing Name element")
	}
	if wire.SetupFile == "" {
		return nil, berror.InvalidContainer("Detection.xml", "missing SetupFile element")
	}

	key, err := decodeFixed("EncryptionKey", wire.EncryptionInfo.EncryptionKey, 32)
	if err != nil {
		return nil, err
	}
	macKey, err := decodeFixed("MacKey", wire.EncryptionInfo.MacKey, 32)
	if err != nil {
		return nil, err
	}
	iv, err := decodeFixed("InitializationVector", wire.EncryptionInfo.InitializationVector, 16)
	if err != nil {
		return nil, err
	}
	mac, err := decodeFixed("Mac", wire.EncryptionInfo.Mac, 32)
	if err != nil {
		return nil, err
	}
	digest, err := decodeFixed("FileDigest", wire.EncryptionInfo.FileDigest, 32)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		Name:                   wire.Name,
		UnencryptedContentSize: wire.UnencryptedContentSize,
		FileName:               wire.FileName,
		SetupFile:              wire.SetupFile,
		EncryptionKey:          key,
		MacKey:                 macKey,
		InitializationVector:   iv,
		Mac:                    mac,
		ProfileIdentifier:      wire.EncryptionInfo.ProfileIdentifier,
		FileDigest:             digest,
		FileDigestAlgorithm:    wire.EncryptionInfo.FileDigestAlgorithm,
	}, nil
}

func decodeFixed(field, value string, wantLen int) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, berror.InvalidContainer("Detection.xml", fmt.Sprintf("%s is not valid base64", field))
	}
	if len(b) != wantLen {
		return nil, berror.InvalidContainer("Detection.xml", fmt.Sprintf("%s decodes to %d bytes, want %d", field, len(b), wantLen))
	}
	return b, nil
}
