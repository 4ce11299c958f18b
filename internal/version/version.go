package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set at build time with:
// -ldflags "-X github.com/softfab/taskrunner/internal/version.Version=vX.Y.Z"
var Version = "dev"

// Current returns the version string reported to the Control Center in
// the Synchronize request's runnerVersion attribute.
func Current() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// Canonical normalizes v into the "vMAJOR.MINOR.PATCH" form semver.Compare
// expects, tolerating a missing leading "v". Returns an error if v is not
// valid semver (the "dev" build version is accepted as-is and sorts below
// every released version).
func Canonical(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "dev" || v == "" {
		return "dev", nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("not a valid version: %q", v)
	}
	return semver.Canonical(v), nil
}

// AtLeast reports whether v satisfies a minimum-version requirement
// expressed by min. A "dev" build never satisfies a non-empty minimum.
func AtLeast(v, min string) (bool, error) {
	cv, err := Canonical(v)
	if err != nil {
		return false, err
	}
	cmin, err := Canonical(min)
	if err != nil {
		return false, err
	}
	if cv == "dev" {
		return cmin == "dev", nil
	}
	if cmin == "dev" {
		return true, nil
	}
	return semver.Compare(cv, cmin) >= 0, nil
}
