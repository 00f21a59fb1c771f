package version

import "testing"

func TestColoredPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Errorf("Colored(false) = %q", got)
	}
	Version = "weird"
	if got := Colored(true); got != "weird" {
		t.Errorf("Colored(true) = %q", got)
	}
}

func TestInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "0.2.0", "", ""
	if got := Info(false); got != "tidy 0.2.0" {
		t.Errorf("Info = %q", got)
	}
	GitCommit, BuildDate = "abc123", "2024-01-15"
	if got := Info(false); got != "tidy 0.2.0 (commit abc123, built 2024-01-15)" {
		t.Errorf("Info = %q", got)
	}
}
