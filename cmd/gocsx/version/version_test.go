package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = old })

	got := Info()
	if !strings.HasPrefix(got, "gocsx version v1.2.3 (commit: ") {
		t.Errorf("Info() = %q", got)
	}
	if strings.Contains(got, "go:") {
		t.Errorf("Info() should not include the Go version, got %q", got)
	}
}

func TestFullInfo(t *testing.T) {
	got := FullInfo()
	if !strings.Contains(got, "go: "+GoVersion) {
		t.Errorf("FullInfo() = %q, want Go version %q", got, GoVersion)
	}
}
