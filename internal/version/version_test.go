package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b[") {
		t.Errorf("Version must be plain text, got %q", Version)
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	got := Colored("1.2.3-rc.1")
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape codes in %q", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Fatalf("suffix lost: %q", got)
	}
	if Colored("dev") != "dev" {
		t.Fatal("non-semver input must pass through")
	}
}

func TestShort(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "1.2.3"
	GitCommit = ""
	if got := Short(); got != "1.2.3" {
		t.Errorf("Short() = %q", got)
	}
	GitCommit = "abc123def456"
	if got := Short(); got != "1.2.3 (abc123d)" {
		t.Errorf("Short() = %q", got)
	}
}
