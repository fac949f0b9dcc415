package updater

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NoVersion is the placeholder remote version and newest tag used before a
// repository has been queried, or when the remote reported nothing usable.
const NoVersion = "0.0.0"

// ErrEmptyConstraint is returned when parsing an empty version constraint.
var ErrEmptyConstraint = errors.New("empty version constraint")

// CompareVersions compares two semantic versions. It returns -1, 0 or 1.
func CompareVersions(v1, v2 string) (int, error) {
	a, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", v1, err)
	}
	b, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", v2, err)
	}
	return a.Compare(b), nil
}

// IsValidVersion reports whether v parses as a semantic version. Partial
// versions such as "1.2" are coerced and accepted.
func IsValidVersion(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// ParseVersionConstraint parses a constraint such as ">=1.0.0,<2.0.0".
func ParseVersionConstraint(c string) (*semver.Constraints, error) {
	if strings.TrimSpace(c) == "" {
		return nil, ErrEmptyConstraint
	}
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		return nil, fmt.Errorf("parsing version constraint %q: %w", c, err)
	}
	return constraint, nil
}

// SatisfiesConstraint reports whether version satisfies constraint.
func SatisfiesConstraint(version string, constraint *semver.Constraints) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return constraint.Check(v), nil
}

// compareLoose compares versions semantically when both parse and falls
// back to a segment-wise comparison for values like "6.4-RC1" or "8.1.2ubuntu".
func compareLoose(v1, v2 string) int {
	if c, err := CompareVersions(v1, v2); err == nil {
		return c
	}

	a, b := splitVersion(v1), splitVersion(v2)
	for i := 0; i < max(len(a), len(b)); i++ {
		var sa, sb string
		if i < len(a) {
			sa = a[i]
		}
		if i < len(b) {
			sb = b[i]
		}
		if c := compareSegment(sa, sb); c != 0 {
			return c
		}
	}
	return 0
}

func splitVersion(v string) []string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-' || r == '+' || r == '_'
	})
}

// compareSegment orders numeric segments numerically, any number after any
// word, and words lexically. A missing segment sorts before a number.
func compareSegment(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case a == b:
		return 0
	case a == "":
		if errB == nil {
			return -1
		}
		return 1
	case b == "":
		if errA == nil {
			return 1
		}
		return -1
	case errA == nil && errB == nil:
		return sign(na - nb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
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

// NewestTag returns the highest semantic version among tags. Tags that do not
// parse are skipped and reported as warnings. ok is false when no tag parses.
func NewestTag(tags []string) (string, []string, bool) {
	var (
		newest   *semver.Version
		tag      string
		warnings []string
	)
	for _, t := range tags {
		v, err := semver.NewVersion(t)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("tag %s has invalid semver format: %v", t, err))
			continue
		}
		if newest == nil || v.GreaterThan(newest) {
			newest, tag = v, t
		}
	}
	if newest == nil {
		return NoVersion, warnings, false
	}
	return tag, warnings, true
}
