// Package semver implements the semantic version value type used for
// release numbering. Versions are totally ordered and strictly
// monotonically increasing along any promotion path.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a (major, minor, patch) tuple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Zero is the version before any release has shipped.
var Zero = Version{}

// Parse parses "1.2.3" or "v1.2.3" into a Version.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want major.minor.patch", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats the version as "1.2.3".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// TagName formats the version as a git tag, "v1.2.3".
func (v Version) TagName() string {
	return "v" + v.String()
}

// Compare returns -1, 0, or 1 comparing v to o in total order.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return sign(v.Major - o.Major)
	case v.Minor != o.Minor:
		return sign(v.Minor - o.Minor)
	default:
		return sign(v.Patch - o.Patch)
	}
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Bump is the magnitude of a version increase.
type Bump int

const (
	// BumpNone means the diff carried no releasable change.
	BumpNone Bump = iota
	// BumpPatch increments the patch component.
	BumpPatch
	// BumpMinor increments the minor component and resets patch.
	BumpMinor
	// BumpMajor increments the major component and resets minor and patch.
	BumpMajor
)

// String returns the bump name.
func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return "none"
	}
}

// Next returns the version after applying the bump. BumpNone returns v
// unchanged - callers must treat that as "nothing to release".
func (v Version) Next(b Bump) Version {
	switch b {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}
