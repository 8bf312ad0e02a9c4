package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the faultline CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgRed, color.Bold)
	versionMinorColor = color.New(color.FgYellow, color.Bold)
	versionPatchColor = color.New(color.FgCyan, color.Bold)

	// Version is the semantic version of the CLI.
	Version = Colorize("0.3.0-dev")

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colorize paints the major, minor and patch segments of v. Anything after
// the patch number (pre-release, build metadata) is left as is.
func Colorize(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	patch, rest := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, rest = patch[:i], patch[i:]
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(patch) + rest
}
