package cli

import (
	"errors"
	"testing"

	"github.com/holocm/holo-pkg/common"
	"github.com/holocm/holo-pkg/internal/berror"
)

func TestOutputDescriptionPrefersOutputPath(t *testing.T) {
	pkg := &common.Package{OutputPath: "/tmp/x.pkg", OutputDir: "/tmp"}
	if got := outputDescription(pkg); got != "/tmp/x.pkg" {
		t.Errorf("outputDescription = %q", got)
	}
}

func TestOutputDescriptionFallsBackToDir(t *testing.T) {
	pkg := &common.Package{OutputDir: "/tmp"}
	if got := outputDescription(pkg); got != "/tmp" {
		t.Errorf("outputDescription = %q", got)
	}
}

func TestExitCodeForBuildError(t *testing.T) {
	if got := exitCodeFor(berror.SourceFolderEmpty("x")); got != berror.ExitEmptySource {
		t.Errorf("exitCodeFor = %d, want %d", got, berror.ExitEmptySource)
	}
}

func TestExitCodeForGenericError(t *testing.T) {
	if got := exitCodeFor(errors.New("boom")); got != berror.ExitGeneral {
		t.Errorf("exitCodeFor = %d, want %d", got, berror.ExitGeneral)
	}
}
