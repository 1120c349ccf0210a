// Package version carries build identification stamped in at link time.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build identification, overridden via -ldflags at release time.
//
//nolint:gochecknoglobals // Link-time variables
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is a point-in-time view of the build identification.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build identification.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the build identification on one line.
func (i Info) String() string {
	return fmt.Sprintf("txcore %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}

// UserAgent returns the User-Agent string sent by outbound HTTP clients.
func UserAgent() string {
	return fmt.Sprintf("txcore/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// Short returns the version without a leading "v".
func Short() string {
	return strings.TrimPrefix(Version, "v")
}
