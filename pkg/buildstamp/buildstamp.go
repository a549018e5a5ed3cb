package buildstamp

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// ldflags will provide these values, for example:
//
//	-X go.jetpack.io/kubecreds/pkg/buildstamp.VersionNumber=0.3.1
var (
	// BuildTimestamp is the timestamp at which the binary was built in ISO 8601
	// format.
	BuildTimestamp string

	// Commit is the git commit hash of the revision used to build the binary.
	Commit string

	// VersionNumber is the version number in semver format MAJOR.MINOR.PATCH
	VersionNumber string

	// PrereleaseTag marks pre-release builds. Usually, "dev".
	PrereleaseTag string
)

const devVersion = "0.0.0-dev"

type buildStamp struct{}

func Get() *buildStamp {
	return &buildStamp{}
}

// Version returns MAJOR.MINOR.PATCH, with -<prerelease>+<commit> appended for
// pre-release builds. Unstamped binaries report 0.0.0-dev.
func (b *buildStamp) Version() string {
	if strings.TrimSpace(VersionNumber) == "" {
		return devVersion
	}
	if strings.TrimSpace(PrereleaseTag) == "" {
		return VersionNumber
	}
	v := VersionNumber + "-" + PrereleaseTag
	if Commit != "" {
		v += "+" + Commit
	}
	return v
}

func (b *buildStamp) IsDevBinary() bool {
	return b.Version() == devVersion || PrereleaseTag != ""
}

// PrintVerboseVersion prints a verbose listing of the version variables
// to the io.Writer argument
func PrintVerboseVersion(w io.Writer) {
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "Version Number: %v\n", VersionNumber)
	fmt.Fprintf(w, "Prerelease Tag: %v\n", PrereleaseTag)
	fmt.Fprintf(w, "Commit:         %v\n", Commit)
	fmt.Fprintf(w, "Build Date:     %v\n", BuildTimestamp)
	fmt.Fprintf(w, "Runtime:        %v\n", runtime.Version())
}
