package detection

import (
	"bytes"
	"strings"
	"testing"
)

func zeroed(n int) []byte { return make([]byte, n) }

func TestNoXMLDeclarationAndFixedOrder(t *testing.T) {
	xml := Generate(Metadata{
		Name: "setup.exe", UnencryptedContentSize: 5, FileName: InnerFileName, SetupFile: "setup.exe",
		EncryptionKey: zeroed(32), MacKey: zeroed(32), InitializationVector: zeroed(16),
		Mac: zeroed(32), ProfileIdentifier: "ProfileVersion1", FileDigest: zeroed(32), FileDigestAlgorithm: "SHA256",
	})

	if strings.HasPrefix(xml, "<?xml") {
		t.Error("Detection.xml must not carry an XML declaration")
	}
	if !strings.HasPrefix(xml, `<ApplicationInfo xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ToolVersion="1.8.6.0">`) {
		t.Fatalf("unexpected root element: %s", xml)
	}

	order := []string{"<Name>", "<UnencryptedContentSize>", "<FileName>", "<SetupFile>", "<EncryptionInfo>",
		"<EncryptionKey>", "<MacKey>", "<InitializationVector>", "<Mac>", "<ProfileIdentifier>", "<FileDigest>", "<FileDigestAlgorithm>"}
	last := -1
	for _, tag := range order {
		idx := strings.Index(xml, tag)
		if idx < 0 {
			t.Fatalf("missing element %s", tag)
		}
		if idx < last {
			t.Fatalf("element %s appears out of order", tag)
		}
		last = idx
	}
}

func TestCRLFLineEndings(t *testing.T) {
	xml := Generate(Metadata{
		Name: "setup.exe", FileName: InnerFileName, SetupFile: "setup.exe",
		EncryptionKey: zeroed(32), MacKey: zeroed(32), InitializationVector: zeroed(16),
		Mac: zeroed(32), FileDigest: zeroed(32),
	})
	if !strings.Contains(xml, "\r\n") {
		t.Fatal("expected CRLF line endings")
	}
	if strings.Contains(strings.ReplaceAll(xml, "\r\n", ""), "\n") {
		t.Fatal("found a bare LF not part of a CRLF pair")
	}
}

func TestZeroedSecretsLiteralBase64(t *testing.T) {
	xml := Generate(Metadata{
		Name: "setup.exe", FileName: InnerFileName, SetupFile: "setup.exe",
		EncryptionKey: zeroed(32), MacKey: zeroed(32), InitializationVector: zeroed(16),
		Mac: zeroed(32), FileDigest: zeroed(32),
	})

	wantKey := "<EncryptionKey>AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=</EncryptionKey>"
	if !strings.Contains(xml, wantKey) {
		t.Errorf("missing literal %s in:\n%s", wantKey, xml)
	}
	wantIV := "<InitializationVector>AAAAAAAAAAAAAAAAAAAAAA==</InitializationVector>"
	if !strings.Contains(xml, wantIV) {
		t.Errorf("missing literal %s in:\n%s", wantIV, xml)
	}
}

func TestRoundTrip(t *testing.T) {
	m := Metadata{
		Name: "setup.exe", UnencryptedContentSize: 12345, FileName: InnerFileName, SetupFile: "setup.exe",
		EncryptionKey: bytes.Repeat([]byte{0x11}, 32), MacKey: bytes.Repeat([]byte{0x22}, 32),
		InitializationVector: bytes.Repeat([]byte{0x33}, 16), Mac: bytes.Repeat([]byte{0x44}, 32),
		ProfileIdentifier: "ProfileVersion1", FileDigest: bytes.Repeat([]byte{0x55}, 32), FileDigestAlgorithm: "SHA256",
	}
	xml := Generate(m)
	got, err := Parse([]byte(xml))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != m.Name || got.SetupFile != m.SetupFile || got.UnencryptedContentSize != m.UnencryptedContentSize {
		t.Errorf("scalar fields did not round-trip: %+v", got)
	}
	if !bytes.Equal(got.EncryptionKey, m.EncryptionKey) || !bytes.Equal(got.Mac, m.Mac) || !bytes.Equal(got.FileDigest, m.FileDigest) {
		t.Error("secret fields did not round-trip")
	}
}

func TestParseToleratesXMLDeclarationAndReorderedElements(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<ApplicationInfo ToolVersion="1.8.6.0">
  <SetupFile>setup.exe</SetupFile>
  <EncryptionInfo>
    <FileDigestAlgorithm>SHA256</FileDigestAlgorithm>
    <EncryptionKey>` + strings.Repeat("A", 43) + `=</EncryptionKey>
    <MacKey>` + strings.Repeat("A", 43) + `=</MacKey>
    <InitializationVector>` + strings.Repeat("A", 22) + `==</InitializationVector>
    <Mac>` + strings.Repeat("A", 43) + `=</Mac>
    <ProfileIdentifier>ProfileVersion1</ProfileIdentifier>
    <FileDigest>` + strings.Repeat("A", 43) + `=</FileDigest>
  </EncryptionInfo>
  <Name>setup.exe</Name>
</ApplicationInfo>`

	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "setup.exe" || m.SetupFile != "setup.exe" {
		t.Errorf("unexpected parse result: %+v", m)
	}
}

func TestParseRejectsMissingName(t *testing.T) {
	doc := `<ApplicationInfo><SetupFile>setup.exe</SetupFile></ApplicationInfo>`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected an error for missing Name")
	}
}

func TestParseRejectsWrongLengthSecret(t *testing.T) {
	doc := `<ApplicationInfo>
  <Name>setup.exe</Name>
  <SetupFile>setup.exe</SetupFile>
  <EncryptionInfo>
    <EncryptionKey>AAAA</EncryptionKey>
  </EncryptionInfo>
</ApplicationInfo>`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected an error for a too-short EncryptionKey")
	}
}
