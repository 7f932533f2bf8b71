// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package relkit

import (
	"github.com/maloquacious/semver"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 1,
		Patch: 0,
		Build: semver.Commit(),
	}
)

// Version returns the version of the relkit tool itself, not the
// version of the package being released.
func Version() semver.Version {
	return version
}
