package semver

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

var errInvalidValue = errors.New("Invalid semver value")

// Version is a MAJOR[.MINOR[.PATCH]] version. Missing trailing components
// are zero, so 1.19 == 1.19.0.
type Version struct {
	canonical string
}

// Parse accepts an optional leading "v" and ignores any pre-release or build
// suffix, so kubectl style strings like "v1.27.3-gke.100" parse as 1.27.3.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, errors.Wrap(errInvalidValue, "empty version")
	}
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	// A vendor suffix is not a pre-release: v1.27.3-gke.100 is 1.27.3.
	if i := strings.IndexAny(raw, "-+"); i >= 0 {
		raw = raw[:i]
	}

	canonical := semver.Canonical(raw)
	if canonical == "" {
		return Version{}, errors.Wrapf(errInvalidValue, "%q", s)
	}
	return Version{canonical: canonical}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1 if v < w, 0 if v == w, or +1 if v > w.
func (v Version) Compare(w Version) int {
	return semver.Compare(v.canonical, w.canonical)
}

// AtLeast reports whether v >= min.
func (v Version) AtLeast(min Version) bool {
	return v.Compare(min) >= 0
}

func (v Version) String() string {
	return strings.TrimPrefix(v.canonical, "v")
}
