// Copyright (c) 2026 Deepsel Systems. All rights reserved.

// Package version implements the semantic version value used by the
// release tooling. A version is exactly three non-negative integers,
// "major.minor.patch". Pre-release and build-metadata suffixes are not
// part of the model and are rejected on parse.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Axis names the version component incremented by a bump.
type Axis string

const (
	AxisMajor Axis = "major"
	AxisMinor Axis = "minor"
	AxisPatch Axis = "patch"
)

// ParseAxis converts a string to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch Axis(strings.ToLower(strings.TrimSpace(s))) {
	case AxisMajor:
		return AxisMajor, nil
	case AxisMinor:
		return AxisMinor, nil
	case AxisPatch:
		return AxisPatch, nil
	}
	return "", fmt.Errorf("unknown axis %q (expected major, minor, or patch)", s)
}

// Version is a semantic version triple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Parse parses a strict "X.Y.Z" version string. Leading "v" prefixes,
// missing components, and pre-release or metadata suffixes are errors.
func Parse(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, fmt.Errorf("parse %q: pre-release and build metadata are not supported", s)
	}
	return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}, nil
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the version incremented along the given axis. Lower
// order components reset to zero for major and minor bumps.
func (v Version) Bump(axis Axis) Version {
	sv := semver.New(v.Major, v.Minor, v.Patch, "", "")
	var next semver.Version
	switch axis {
	case AxisMajor:
		next = sv.IncMajor()
	case AxisMinor:
		next = sv.IncMinor()
	default:
		next = sv.IncPatch()
	}
	return Version{Major: next.Major(), Minor: next.Minor(), Patch: next.Patch()}
}

// Compare orders versions numerically, major first, then minor, then
// patch. It returns -1, 0, or +1.
func (v Version) Compare(o Version) int {
	return semver.New(v.Major, v.Minor, v.Patch, "", "").
		Compare(semver.New(o.Major, o.Minor, o.Patch, "", ""))
}
