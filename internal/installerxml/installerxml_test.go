package installerxml

import (
	"strings"
	"testing"
)

func TestPackageInfoBasics(t *testing.T) {
	xml := GeneratePackageInfo(PackageInfo{
		Identifier: "com.example.myapp", Version: "1.0.0",
		InstallLocation: "/Applications", InstallKBytes: 2048, NumFiles: 25,
	})

	if !strings.HasPrefix(xml, "<?xml") {
		t.Error("PackageInfo must start with an XML declaration")
	}
	for _, want := range []string{
		`format-version="2"`,
		`identifier="com.example.myapp"`,
		`version="1.0.0"`,
		`install-location="/Applications"`,
		`auth="root"`,
		`installKBytes="2048"`,
		`numberOfFiles="25"`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("PackageInfo missing %q:\n%s", want, xml)
		}
	}
	if strings.Contains(xml, "<scripts>") {
		t.Error("PackageInfo must not emit <scripts> when there are no scripts")
	}
}

func TestPackageInfoScripts(t *testing.T) {
	cases := []struct {
		pre, post  bool
		wantPre    bool
		wantPost   bool
	}{
		{true, false, true, false},
		{false, true, false, true},
		{true, true, true, true},
	}
	for _, c := range cases {
		xml := GeneratePackageInfo(PackageInfo{Identifier: "com.test.app", Version: "1.0.0", HasPreinstall: c.pre, HasPostinstall: c.post})
		if !strings.Contains(xml, "<scripts>") {
			t.Fatalf("expected <scripts> for case %+v", c)
		}
		if strings.Contains(xml, "<preinstall") != c.wantPre {
			t.Errorf("preinstall presence mismatch for %+v", c)
		}
		if strings.Contains(xml, "<postinstall") != c.wantPost {
			t.Errorf("postinstall presence mismatch for %+v", c)
		}
	}
}

func TestDistributionBasics(t *testing.T) {
	xml := GenerateDistribution(Distribution{
		Identifier: "com.example.myapp", Title: "My Amazing App",
		Version: "2.0.0", InstallKBytes: 5000,
	})

	if !strings.HasPrefix(xml, "<?xml") {
		t.Error("Distribution must start with an XML declaration")
	}
	for _, want := range []string{
		"minSpecVersion=\"1\"",
		"<title>My Amazing App</title>",
		"<options",
		"<domains",
		"<choices-outline>",
		"<line choice=\"default\"/>",
		`id="com.example.myapp"`,
		`installKBytes="5000"`,
		"#base.pkg",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("Distribution missing %q:\n%s", want, xml)
		}
	}
}

func TestDistributionEscapesTitle(t *testing.T) {
	xml := GenerateDistribution(Distribution{Identifier: "com.test.app", Title: `A & B "App"`, Version: "1.0.0"})
	if strings.Contains(xml, `A & B`) {
		t.Error("ampersand in title must be escaped")
	}
}
