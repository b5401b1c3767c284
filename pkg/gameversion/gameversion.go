// Package gameversion parses release version strings of the game ("1.19",
// "1.19.3"). Only 1.x releases are accepted; weekly snapshots are rejected.
package gameversion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/uklient/uklient/pkg/errors"
)

var snapshotPattern = regexp.MustCompile(`\d+w\d{2}[a-z]`)

// Version is a 1.<Minor>.<Patch> release
type Version struct {
	Minor uint8
	Patch uint8
}

// Parse reads a release version. A missing patch component means 0.
func Parse(s string) (Version, error) {
	if snapshotPattern.MatchString(s) {
		return Version{}, errors.Newf(errors.ErrInvalidVersion, "snapshots are unsupported: %q", s)
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, invalid(s, "format")
	}

	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || major != 1 {
		return Version{}, invalid(s, "major")
	}

	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Version{}, invalid(s, "minor")
	}

	var patch uint64
	if len(parts) == 3 {
		patch, err = strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			return Version{}, invalid(s, "patch")
		}
	}

	return Version{Minor: uint8(minor), Patch: uint8(patch)}, nil
}

func invalid(s, component string) error {
	return errors.Newf(errors.ErrInvalidVersion, "invalid %s version in %q", component, s).
		WithDetail("version", s)
}

// String formats the version the way the catalog lists it: a zero patch is dropped
func (v Version) String() string {
	if v.Patch == 0 {
		return fmt.Sprintf("1.%d", v.Minor)
	}
	return fmt.Sprintf("1.%d.%d", v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1
func (v Version) Compare(o Version) int {
	switch {
	case v.Minor != o.Minor:
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	case v.Patch != o.Patch:
		if v.Patch < o.Patch {
			return -1
		}
		return 1
	}
	return 0
}
